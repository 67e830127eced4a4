package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/latexr/internal/history"
	"github.com/csheth/latexr/internal/options"
	"github.com/csheth/latexr/internal/session"
)

func (m *model) View() string {
	parts := []string{
		m.heroView(),
		m.bannerView(),
		m.formView(),
		m.statusView(),
		m.keyLegendView(),
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	open := m.session.OpenModals()
	for i, modal := range open {
		parts = append(parts, m.modalView(modal, i == len(open)-1))
	}
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(lipgloss.Left, renderLogo(), taglineStyle.Render(heroTagline))
}

func (m *model) bannerView() string {
	active := m.session.Banners().Active()
	if len(active) == 0 {
		return ""
	}
	pills := make([]string, 0, len(active))
	for _, kind := range active {
		pills = append(pills, bannerStyle.Render("✓ "+kind.Message()))
	}
	return strings.Join(pills, " ")
}

func (m *model) fieldLabel(f field) string {
	label := fmt.Sprintf("%-14s", f.label())
	if m.focus == f {
		return focusedLabelStyle.Render(label)
	}
	return labelStyle.Render(label)
}

func (m *model) formView() string {
	opts := m.session.Options()
	math := "[ ] Math mode"
	if opts.MathMode {
		math = "[x] Math mode"
	}
	rows := []string{
		m.fieldLabel(fieldInput) + helperStyle.Render(math),
		m.input.View(),
		m.fieldLabel(fieldBackground) + m.background.View(),
		m.fieldLabel(fieldScale) + m.scale.View() + helperStyle.Render(fmt.Sprintf("  scale %g, d resets", opts.Scale)),
		m.fieldLabel(fieldQuality) + m.quality.View() + helperStyle.Render(qualityNote(opts.Type)),
		m.fieldLabel(fieldFormat) + m.formatSelector(opts.Type),
		m.fieldLabel(fieldLink) + m.linkView(),
	}
	return formBoxStyle.Width(m.layout.formWidth).Render(strings.Join(rows, "\n"))
}

func qualityNote(t options.ImageType) string {
	if t.Lossy() {
		return "  0-100"
	}
	return "  unused for " + t.Label()
}

func (m *model) formatSelector(current options.ImageType) string {
	cells := make([]string, 0, len(options.Types))
	for _, t := range options.Types {
		if t == current {
			cells = append(cells, currentLineStyle.Render(" "+t.Label()+" "))
			continue
		}
		cells = append(cells, " "+t.Label()+" ")
	}
	return strings.Join(cells, "")
}

func (m *model) linkView() string {
	width := m.layout.formWidth - 20
	if width < 10 {
		width = 10
	}
	link := truncate.StringWithTail(m.session.ShareURL(), uint(width), "…")
	if m.focus == fieldLink {
		return link + helperStyle.Render("  Enter copies")
	}
	return link
}

func (m *model) statusView() string {
	opts := m.session.Options()
	math := "off"
	if opts.MathMode {
		math = "on"
	}
	stats := []string{
		"Math " + math,
		opts.Type.Label(),
		fmt.Sprintf("Scale %g", opts.Scale),
		fmt.Sprintf("History %d", len(m.session.History())),
	}
	if opts.Type.Lossy() {
		stats = append(stats, fmt.Sprintf("Quality %d", opts.Quality))
	}
	for _, snapshot := range m.jobs.Running() {
		stats = append(stats, fmt.Sprintf("%s %s…", m.spinner.View(), snapshot.Kind))
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

type keyHint struct {
	Key         string
	Description string
	Enabled     bool
}

func (m *model) keyHints() []keyHint {
	opts := m.session.Options()
	return []keyHint{
		{"h", "History", m.session.CanOpenHistory()},
		{"v", "View image", opts.CanExport()},
		{"c", "Copy image", opts.CanCopy()},
		{"s", "Save image", opts.CanExport()},
		{"m", "Math mode", true},
		{"f", "Format", true},
		{"l", "Copy link", true},
		{"d", "Default scale", true},
		{"Tab", "Edit fields", true},
		{"?", "Help", true},
		{"q", "Quit", true},
	}
}

func (m *model) keyLegendView() string {
	if m.focus != fieldNone {
		return helperStyle.Render("Editing " + m.focus.label() + ". Tab/Shift+Tab moves, Esc leaves the form.")
	}
	hints := m.keyHints()
	cells := make([]string, 0, len(hints))
	for _, hint := range hints {
		desc := keyDescStyle.Render(" " + hint.Description)
		if !hint.Enabled {
			desc = disabledStyle.Render(" " + hint.Description)
		}
		cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(hint.Key), desc, " "))
	}
	const columns = 6
	rows := []string{}
	for i := 0; i < len(cells); i += columns {
		end := i + columns
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
	}
	return strings.Join(rows, "\n")
}

func (m *model) modalView(modal session.Modal, top bool) string {
	var title, body, footer string
	switch modal {
	case session.ModalHistory:
		title, body, footer = "History", m.historyBody(), "↑/↓ select • Enter restore • x clear • h/Esc close"
	case session.ModalImage:
		title, body, footer = "Image", m.imageBody(), "v/Esc close"
	case session.ModalHelp:
		title, body, footer = "Help", m.help.View(), "↑/↓ scroll • ?/Esc close"
	}
	style := modalBoxStyle
	if top {
		style = topModalBoxStyle
	}
	content := joinNonEmpty([]string{sectionHeaderStyle.Render(title), body, helperStyle.Render(footer)})
	return style.Width(m.layout.modalWidth).Render(content)
}

func (m *model) historyBody() string {
	entries := m.session.History()
	if len(entries) == 0 {
		return helperStyle.Render("No formulas yet.")
	}
	rows := m.layout.historyRows
	start := 0
	if m.historyCursor >= rows {
		start = m.historyCursor - rows + 1
	}
	end := start + rows
	if end > len(entries) {
		end = len(entries)
	}
	width := m.layout.modalWidth - 8
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := truncate.StringWithTail(historyLine(entries[i]), uint(width), "…")
		if i == m.historyCursor {
			line = currentLineStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func historyLine(entry history.Entry) string {
	mode := " "
	if entry.MathMode {
		mode = "$"
	}
	text := strings.Join(strings.Fields(entry.Text), " ")
	return fmt.Sprintf("%s  %s  %s", entry.CapturedAt, mode, text)
}

func (m *model) imageBody() string {
	preview := m.session.Preview()
	if preview.Pending {
		return fmt.Sprintf("%s Rendering…", m.spinner.View())
	}
	res := preview.Result
	if res.Path == "" {
		return helperStyle.Render("Nothing to show.")
	}
	art, err := m.preview.render(res.Blob, res.Path, m.layout.previewCols, m.layout.previewRows)
	if err != nil {
		m.config.Logger.Error("preview: decode", "path", res.Path, "error", err)
		art = helperStyle.Render("This image cannot be drawn in the terminal.")
	}
	meta := fmt.Sprintf("%s • %dx%d px • %s", res.Path, res.Blob.Width, res.Blob.Height, res.Blob.Type.Label())
	return joinNonEmpty([]string{art, helperStyle.Render(meta)})
}

func (m *model) helpContent() string {
	width := m.help.Width
	if width <= 0 {
		width = 60
	}
	lines := []string{sectionHeaderStyle.Render("Shortcuts")}
	for _, hint := range m.keyHints() {
		lines = append(lines, fmt.Sprintf("%-4s %s", hint.Key, hint.Description))
	}
	notes := []string{
		"Shortcuts work only while no field has focus. Tab walks the fields; Esc leaves them, then closes the newest window.",
		"Image Scale shows five times the real magnification. In the scale or quality field, Ctrl+D restores the default.",
		"Copy needs PNG. JPEG and WEBP use Image Quality.",
		"Run latexr with a shared link to open its formula.",
	}
	lines = append(lines, "", sectionHeaderStyle.Render("Notes"))
	for _, note := range notes {
		lines = append(lines, wordwrap.String("• "+note, width))
	}
	if hint := m.session.HelpErrorHint(); hint != "" {
		lines = append(lines, "", wordwrap.String(hint, width))
	}
	return strings.Join(lines, "\n")
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	// Shadow first, offset down and right, then the face on top.
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y][x] = cell{r: r, style: logoFaceStyle}
			}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}
