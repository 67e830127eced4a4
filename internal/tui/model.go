package tui

import (
	"log/slog"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/latexr/internal/export"
	"github.com/csheth/latexr/internal/options"
	"github.com/csheth/latexr/internal/session"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Session *session.Session
	Logger  *slog.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	return newModel(config)
}

func newModel(config Config) *model {
	if config.Session == nil {
		config.Session = session.New(session.Config{Logger: config.Logger})
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	input := textarea.New()
	input.Placeholder = inputPlaceholder
	input.ShowLineNumbers = false
	input.CharLimit = 0

	background := textinput.New()
	background.Prompt = ""
	background.CharLimit = options.MaxBackgroundLength
	background.Width = options.MaxBackgroundLength + 1

	scale := textinput.New()
	scale.Prompt = ""
	scale.CharLimit = 12
	scale.Width = 8

	quality := textinput.New()
	quality.Prompt = ""
	quality.CharLimit = 12
	quality.Width = 8

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	help := viewport.New(70, 12)

	m := &model{
		config:     config,
		session:    config.Session,
		jobs:       newJobBus(config.Logger),
		layout:     newPageLayout(),
		input:      input,
		background: background,
		scale:      scale,
		quality:    quality,
		spinner:    spin,
		help:       help,
	}
	m.applyLayout()
	m.syncFields()
	return m
}

type model struct {
	config  Config
	session *session.Session
	jobs    *jobBus
	layout  pageLayout

	input      textarea.Model
	background textinput.Model
	scale      textinput.Model
	quality    textinput.Model
	spinner    spinner.Model
	help       viewport.Model

	focus         field
	historyCursor int
	infoMessage   string
	preview       previewCache
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if len(m.jobs.Running()) > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.applyLayout()
		return m, nil
	case jobStartedMsg:
		if m.jobs.track(msg.Snapshot) {
			return m, m.spinner.Tick
		}
		return m, nil
	case jobDoneMsg:
		m.jobs.finish(msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case exportResultMsg:
		token, ok := m.session.Complete(msg.result)
		if !ok {
			return m, nil
		}
		return m, bannerTimerCmd(token, m.session.Banners().Duration())
	case bannerExpiredMsg:
		m.session.ExpireBanner(msg.token)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		return m, m.quit()
	}
	if m.focus != fieldNone {
		return m.handleFieldKey(key)
	}
	switch key.Type {
	case tea.KeyTab:
		return m, m.setFocus(focusOrder[0])
	case tea.KeyShiftTab:
		return m, m.setFocus(focusOrder[len(focusOrder)-1])
	case tea.KeyEsc:
		m.session.DismissTop()
		return m, nil
	}
	if cmd, handled := m.handleModalKey(key); handled {
		return m, cmd
	}
	return m.handleShortcut(key)
}

func (m *model) topModal() (session.Modal, bool) {
	open := m.session.OpenModals()
	if len(open) == 0 {
		return 0, false
	}
	return open[len(open)-1], true
}

func (m *model) handleModalKey(key tea.KeyMsg) (tea.Cmd, bool) {
	top, ok := m.topModal()
	if !ok {
		return nil, false
	}
	switch top {
	case session.ModalHistory:
		switch key.String() {
		case "up", "k":
			m.moveHistoryCursor(-1)
		case "down", "j":
			m.moveHistoryCursor(1)
		case "enter":
			if m.session.RestoreHistory(m.historyCursor) {
				m.syncFields()
			}
		case "x":
			m.session.ClearHistory()
			m.historyCursor = 0
		default:
			return nil, false
		}
		return nil, true
	case session.ModalHelp:
		switch key.String() {
		case "up", "down", "pgup", "pgdown", "k", "j":
			var cmd tea.Cmd
			m.help, cmd = m.help.Update(key)
			return cmd, true
		}
	}
	return nil, false
}

func (m *model) moveHistoryCursor(delta int) {
	n := len(m.session.History())
	if n == 0 {
		m.historyCursor = 0
		return
	}
	m.historyCursor = clamp(m.historyCursor+delta, 0, n-1)
}

func (m *model) handleShortcut(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	top, hasTop := m.topModal()
	switch key.String() {
	case "h":
		if hasTop && top == session.ModalHistory {
			m.session.CloseModal(session.ModalHistory)
			return m, nil
		}
		if !m.session.OpenHistory() {
			m.infoMessage = "History is empty. Copy, save or view a formula first."
			return m, nil
		}
		m.infoMessage = ""
		m.historyCursor = 0
	case "v":
		if hasTop && top == session.ModalImage {
			m.session.CloseModal(session.ModalImage)
			return m, nil
		}
		return m, m.startExport(export.ActionPreview)
	case "c":
		return m, m.startExport(export.ActionCopy)
	case "s":
		return m, m.startExport(export.ActionDownload)
	case "m":
		m.session.ToggleMathMode()
	case "f":
		m.session.CycleImageType()
	case "l":
		return m, m.copyLink()
	case "d":
		m.session.ResetScale()
		m.syncFields()
	case "?":
		if m.session.ModalOpen(session.ModalHelp) {
			m.session.CloseModal(session.ModalHelp)
			return m, nil
		}
		m.help.SetContent(m.helpContent())
		m.help.GotoTop()
		m.session.OpenModal(session.ModalHelp)
	case "q":
		return m, m.quit()
	}
	return m, nil
}

func (m *model) startExport(action export.Action) tea.Cmd {
	req, ok := m.session.Begin(action)
	if !ok {
		m.infoMessage = unavailableMessage(action, m.session.Options())
		return nil
	}
	m.infoMessage = ""
	return m.jobs.Start(jobKindFor(action), exportJob(m.session, req))
}

// quit cancels in-flight captures before leaving the program.
func (m *model) quit() tea.Cmd {
	m.jobs.Stop()
	return tea.Quit
}

func unavailableMessage(action export.Action, opts options.Options) string {
	if opts.TextEmpty() {
		return "Type a formula first."
	}
	if action == export.ActionCopy && !opts.CanCopy() {
		return "Copy needs PNG. Press f to change the format."
	}
	return ""
}

func (m *model) copyLink() tea.Cmd {
	token, err := m.session.CopyShareLink()
	if err != nil {
		return nil
	}
	return bannerTimerCmd(token, m.session.Banners().Duration())
}

func (m *model) handleFieldKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.commitField()
		return m, m.setFocus(fieldNone)
	case tea.KeyTab:
		m.commitField()
		return m, m.setFocus(m.relativeField(1))
	case tea.KeyShiftTab:
		m.commitField()
		return m, m.setFocus(m.relativeField(-1))
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldInput:
		m.input, cmd = m.input.Update(key)
		m.session.SetText(m.input.Value())
	case fieldBackground:
		m.background, cmd = m.background.Update(key)
		m.session.SetBackground(m.background.Value())
		if bg := m.session.Options().Background; bg != m.background.Value() {
			m.background.SetValue(bg)
		}
	case fieldScale:
		switch key.String() {
		case "enter":
			m.commitField()
		case "ctrl+d":
			m.session.ResetScale()
			m.syncFields()
		default:
			m.scale, cmd = m.scale.Update(key)
		}
	case fieldQuality:
		switch key.String() {
		case "enter":
			m.commitField()
		case "ctrl+d":
			m.session.ResetQuality()
			m.syncFields()
		default:
			m.quality, cmd = m.quality.Update(key)
		}
	case fieldFormat:
		switch key.String() {
		case "right", "l", " ", "enter":
			m.session.CycleImageType()
		case "left", "h":
			m.session.SetImageType(previousType(m.session.Options().Type))
		}
	case fieldLink:
		switch key.String() {
		case "enter", "c", "y":
			cmd = m.copyLink()
		}
	}
	return m, cmd
}

func previousType(t options.ImageType) options.ImageType {
	prev := t
	for next := t.Next(); next != t; next = next.Next() {
		prev = next
	}
	return prev
}

// relativeField moves through focusOrder. Stepping past either end
// leaves the form so shortcuts become live again.
func (m *model) relativeField(delta int) field {
	idx := -1
	for i, f := range focusOrder {
		if f == m.focus {
			idx = i
			break
		}
	}
	next := idx + delta
	if next < 0 || next >= len(focusOrder) {
		return fieldNone
	}
	return focusOrder[next]
}

func (m *model) setFocus(f field) tea.Cmd {
	m.input.Blur()
	m.background.Blur()
	m.scale.Blur()
	m.quality.Blur()
	m.focus = f
	switch f {
	case fieldInput:
		return m.input.Focus()
	case fieldBackground:
		return m.background.Focus()
	case fieldScale:
		return m.scale.Focus()
	case fieldQuality:
		return m.quality.Focus()
	}
	return nil
}

// commitField applies numeric fields, which only take effect once the
// user leaves them or presses Enter.
func (m *model) commitField() {
	switch m.focus {
	case fieldScale:
		m.session.SetScaleInput(m.scale.Value())
	case fieldQuality:
		m.session.SetQualityInput(m.quality.Value())
	}
	m.syncFields()
}

// syncFields copies session options into the widgets.
func (m *model) syncFields() {
	opts := m.session.Options()
	if m.input.Value() != opts.Text {
		m.input.SetValue(opts.Text)
	}
	if m.background.Value() != opts.Background {
		m.background.SetValue(opts.Background)
	}
	m.scale.SetValue(strconv.Itoa(opts.ScaleInput()))
	m.quality.SetValue(strconv.Itoa(opts.Quality))
}

func (m *model) applyLayout() {
	m.input.SetWidth(m.layout.formWidth - 4)
	m.input.SetHeight(m.layout.inputHeight)
	m.help.Width = m.layout.modalWidth - 6
	m.help.Height = m.layout.helpRows
	m.help.SetContent(m.helpContent())
}
