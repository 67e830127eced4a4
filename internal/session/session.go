// Package session owns the state of one editing session: render options,
// history, modal flags, banners and the current preview. Every mutation goes
// through a named operation; the UI reads state through accessors only.
//
// A Session is not safe for concurrent use. Export work runs elsewhere via
// Run, which touches no session state, and its Result is fed back through
// Complete on the owning goroutine.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/csheth/latexr/internal/clipboard"
	"github.com/csheth/latexr/internal/export"
	"github.com/csheth/latexr/internal/history"
	"github.com/csheth/latexr/internal/notify"
	"github.com/csheth/latexr/internal/options"
	"github.com/csheth/latexr/internal/platform"
	"github.com/csheth/latexr/internal/prefs"
	"github.com/csheth/latexr/internal/share"
)

// HistoryPolicy decides whether opening the history needs existing entries.
type HistoryPolicy string

const (
	// HistoryGated only opens the history when it already has entries.
	HistoryGated HistoryPolicy = "gated"
	// HistoryAlways opens it unconditionally.
	HistoryAlways HistoryPolicy = "always"
)

// Valid reports whether p is a known policy.
func (p HistoryPolicy) Valid() bool {
	return p == HistoryGated || p == HistoryAlways
}

// Modal identifies an overlay.
type Modal int

const (
	ModalHistory Modal = iota
	ModalImage
	ModalHelp
)

// Config wires a Session.
type Config struct {
	Exporter  *export.Exporter
	Clipboard clipboard.Writer
	// Prefs persists the scale. Nil keeps it in memory only.
	Prefs          *prefs.Store
	ShareBaseURL   string
	HistoryPolicy  HistoryPolicy
	NotifyDuration time.Duration
	// UserAgent reports the rasterizing browser, for the help text.
	UserAgent func() string
	LogPath   string
	Now       func() time.Time
	Logger    *slog.Logger
}

func (c *Config) defaults() {
	if c.ShareBaseURL == "" {
		c.ShareBaseURL = share.DefaultBaseURL
	}
	if !c.HistoryPolicy.Valid() {
		c.HistoryPolicy = HistoryGated
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.UserAgent == nil {
		c.UserAgent = func() string { return "" }
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Preview is the image shown in the image modal.
type Preview struct {
	Result  export.Result
	Pending bool
	// Seq is the preview request the modal is waiting for or showing.
	Seq uint64
}

// Session is the state owner.
type Session struct {
	cfg     Config
	opts    options.Options
	history *history.Store
	banners *notify.Banners
	// openOrder lists open modals, most recent last.
	openOrder []Modal
	preview   Preview
	// previewSeq numbers preview requests; zero is never issued.
	previewSeq uint64
}

// New returns a session with default options and the persisted scale.
func New(cfg Config) *Session {
	cfg.defaults()
	opts := options.Default()
	if cfg.Prefs != nil {
		opts.Scale = prefs.LoadScale(cfg.Prefs)
	}
	return &Session{
		cfg:     cfg,
		opts:    opts,
		history: history.NewWithClock(cfg.Now),
		banners: notify.New(cfg.NotifyDuration),
	}
}

// Options returns a copy of the current render options.
func (s *Session) Options() options.Options {
	return s.opts
}

// SeedFromQuery fills the text from the share parameter of rawQuery. It
// reports whether the parameter was present.
func (s *Session) SeedFromQuery(rawQuery string) bool {
	text, ok := share.Decode(rawQuery)
	if ok {
		s.opts.Text = text
	}
	return ok
}

// SeedFromLink is SeedFromQuery for a full share link.
func (s *Session) SeedFromLink(link string) (bool, error) {
	text, ok, err := share.DecodeURL(link)
	if err != nil {
		return false, err
	}
	if ok {
		s.opts.Text = text
	}
	return ok, nil
}

// SetText replaces the markup.
func (s *Session) SetText(text string) {
	s.opts.Text = text
}

// SetMathMode sets whether markup is wrapped in math delimiters.
func (s *Session) SetMathMode(on bool) {
	s.opts.MathMode = on
}

// ToggleMathMode flips math mode.
func (s *Session) ToggleMathMode() {
	s.opts.MathMode = !s.opts.MathMode
}

// SetScaleInput applies the displayed scale field and persists the result.
func (s *Session) SetScaleInput(raw string) {
	if s.opts.SetScaleInput(raw) {
		s.persistScale()
	}
}

// ResetScale restores the default scale and persists it.
func (s *Session) ResetScale() {
	s.opts.ResetScale()
	s.persistScale()
}

// SetQualityInput applies the quality field.
func (s *Session) SetQualityInput(raw string) {
	s.opts.SetQualityInput(raw)
}

// ResetQuality restores the default quality.
func (s *Session) ResetQuality() {
	s.opts.ResetQuality()
}

// SetBackground applies the background field.
func (s *Session) SetBackground(raw string) {
	s.opts.SetBackground(raw)
}

// SetImageType selects the export type; unknown types are ignored.
func (s *Session) SetImageType(t options.ImageType) {
	if t.Valid() {
		s.opts.Type = t
	}
}

// CycleImageType moves to the next export type.
func (s *Session) CycleImageType() {
	s.opts.Type = s.opts.Type.Next()
}

func (s *Session) persistScale() {
	if s.cfg.Prefs == nil {
		return
	}
	if err := prefs.SaveScale(s.cfg.Prefs, s.opts.Scale); err != nil {
		s.cfg.Logger.Error("session: persist scale", "error", err)
	}
}

// History returns the entries, newest first.
func (s *Session) History() []history.Entry {
	return s.history.List()
}

// ClearHistory empties the history.
func (s *Session) ClearHistory() {
	s.history.Clear()
}

// SaveFormula records the current formula in the history.
func (s *Session) SaveFormula() bool {
	return s.history.Append(s.opts.Text, s.opts.MathMode)
}

// RestoreHistory loads entry i into the form and closes the history.
func (s *Session) RestoreHistory(i int) bool {
	entry, ok := s.history.At(i)
	if !ok {
		return false
	}
	s.opts.Text = entry.Text
	s.opts.MathMode = entry.MathMode
	s.CloseModal(ModalHistory)
	return true
}

// CanOpenHistory applies the configured policy.
func (s *Session) CanOpenHistory() bool {
	if s.cfg.HistoryPolicy == HistoryAlways {
		return true
	}
	return s.history.Len() > 0
}

// OpenHistory saves the current formula and opens the history modal. It
// does nothing when the policy forbids it.
func (s *Session) OpenHistory() bool {
	if !s.CanOpenHistory() {
		return false
	}
	s.SaveFormula()
	s.OpenModal(ModalHistory)
	return true
}

// OpenModal marks m open. Other modals are unaffected.
func (s *Session) OpenModal(m Modal) {
	s.removeFromOrder(m)
	s.openOrder = append(s.openOrder, m)
}

// CloseModal marks m closed. Closing the image modal releases its preview.
func (s *Session) CloseModal(m Modal) {
	if !s.ModalOpen(m) {
		return
	}
	s.removeFromOrder(m)
	if m == ModalImage {
		s.releasePreview()
		s.preview = Preview{}
	}
}

// DismissTop closes the most recently opened modal, as a backdrop click
// would. It reports whether anything was open.
func (s *Session) DismissTop() bool {
	if len(s.openOrder) == 0 {
		return false
	}
	s.CloseModal(s.openOrder[len(s.openOrder)-1])
	return true
}

// ModalOpen reports whether m is open.
func (s *Session) ModalOpen(m Modal) bool {
	for _, open := range s.openOrder {
		if open == m {
			return true
		}
	}
	return false
}

// OpenModals returns the open modals, oldest first.
func (s *Session) OpenModals() []Modal {
	return append([]Modal(nil), s.openOrder...)
}

func (s *Session) removeFromOrder(m Modal) {
	kept := s.openOrder[:0]
	for _, open := range s.openOrder {
		if open != m {
			kept = append(kept, open)
		}
	}
	s.openOrder = kept
}

// ShowBanner makes a banner visible and returns the token its timer must
// present to ExpireBanner.
func (s *Session) ShowBanner(kind notify.Kind) notify.Token {
	return s.banners.Show(kind, s.cfg.Now())
}

// ExpireBanner hides the banner if token is still current.
func (s *Session) ExpireBanner(token notify.Token) bool {
	return s.banners.Expire(token)
}

// Banners exposes banner state for rendering.
func (s *Session) Banners() *notify.Banners {
	return s.banners
}

// ShareURL returns the link for the current text.
func (s *Session) ShareURL() string {
	return share.BuildURL(s.cfg.ShareBaseURL, s.opts.Text)
}

// CopyShareLink writes the share link to the clipboard and shows the Link
// Copied banner. On failure no banner is shown.
func (s *Session) CopyShareLink() (notify.Token, error) {
	if s.cfg.Clipboard == nil {
		return notify.Token{}, fmt.Errorf("session: %w", clipboard.ErrUnsupported)
	}
	if err := s.cfg.Clipboard.WriteText(s.ShareURL()); err != nil {
		s.cfg.Logger.Error("session: copy link", "error", err)
		return notify.Token{}, err
	}
	return s.ShowBanner(notify.LinkCopied), nil
}

// HelpErrorHint is the help line telling the user where render errors go.
func (s *Session) HelpErrorHint() string {
	return platform.ErrorHint(platform.Detect(s.cfg.UserAgent()), s.cfg.LogPath)
}

// Request is an export ready to run off the owning goroutine.
type Request struct {
	Action  export.Action
	Options options.Options
	Seq     uint64
}

// Begin validates action against the current options and records the
// formula in the history. Preview also opens the image modal right away
// with a pending image. The second result is false when the action is not
// available; nothing changes in that case.
func (s *Session) Begin(action export.Action) (Request, bool) {
	if !action.Available(s.opts) {
		return Request{}, false
	}
	s.SaveFormula()
	req := Request{Action: action, Options: s.opts}
	if action == export.ActionPreview {
		s.previewSeq++
		req.Seq = s.previewSeq
		s.releasePreview()
		s.preview = Preview{Pending: true, Seq: req.Seq}
		s.OpenModal(ModalImage)
	}
	return req, true
}

// Run performs req. It reads no session state and may run on any goroutine.
func (s *Session) Run(ctx context.Context, req Request) export.Result {
	if s.cfg.Exporter == nil {
		return export.Result{Action: req.Action, Seq: req.Seq, Err: fmt.Errorf("session: no exporter configured")}
	}
	res := s.cfg.Exporter.Run(ctx, req.Action, req.Options)
	res.Seq = req.Seq
	return res
}

// Complete applies a finished export. Failures are logged and otherwise
// invisible; success shows the action's banner, if it has one. The token
// is valid only when the second result is true.
func (s *Session) Complete(res export.Result) (notify.Token, bool) {
	if res.Err != nil {
		s.cfg.Logger.Error("export failed", "action", res.Action, "error", res.Err)
		if res.Action == export.ActionPreview && s.awaitingPreview(res.Seq) {
			s.preview.Pending = false
		}
		return notify.Token{}, false
	}
	switch res.Action {
	case export.ActionCopy:
		return s.ShowBanner(notify.ImageCopied), true
	case export.ActionDownload:
		s.cfg.Logger.Info("export: saved", "path", res.Path, "bytes", res.Blob.Size())
		return s.ShowBanner(notify.ImageSaved), true
	case export.ActionPreview:
		if !s.awaitingPreview(res.Seq) {
			// Closed or superseded before the capture finished.
			s.revoke(res.Path)
			return notify.Token{}, false
		}
		s.preview = Preview{Result: res, Seq: res.Seq}
	}
	return notify.Token{}, false
}

// awaitingPreview reports whether the open image modal is waiting for the
// preview request seq.
func (s *Session) awaitingPreview(seq uint64) bool {
	return seq != 0 && s.ModalOpen(ModalImage) && s.preview.Pending && s.preview.Seq == seq
}

// Preview returns the image modal content.
func (s *Session) Preview() Preview {
	return s.preview
}

// Close releases every temporary file. The session stays usable.
func (s *Session) Close() error {
	s.preview = Preview{}
	if s.cfg.Exporter == nil {
		return nil
	}
	return s.cfg.Exporter.Refs().RevokeAll()
}

func (s *Session) releasePreview() {
	if s.preview.Result.Path != "" {
		s.revoke(s.preview.Result.Path)
	}
}

func (s *Session) revoke(path string) {
	if s.cfg.Exporter == nil || path == "" {
		return
	}
	if err := s.cfg.Exporter.Refs().Revoke(path); err != nil {
		s.cfg.Logger.Warn("session: release preview", "path", path, "error", err)
	}
}
