// Package export implements the user-facing image actions on top of the
// capture pipeline: copy to clipboard, save to disk and preview.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/csheth/latexr/internal/capture"
	"github.com/csheth/latexr/internal/clipboard"
	"github.com/csheth/latexr/internal/filename"
	"github.com/csheth/latexr/internal/options"
)

// ErrNotAvailable is returned when an action is invoked while its
// preconditions do not hold (blank markup, or copy with a non-PNG type).
var ErrNotAvailable = errors.New("export: action not available")

// Action names an export operation.
type Action string

const (
	ActionCopy     Action = "copy"
	ActionDownload Action = "download"
	ActionPreview  Action = "preview"
)

// Available reports whether a can run with opts.
func (a Action) Available(opts options.Options) bool {
	switch a {
	case ActionCopy:
		return opts.CanCopy()
	case ActionDownload, ActionPreview:
		return opts.CanExport()
	default:
		return false
	}
}

// Config wires an Exporter.
type Config struct {
	Pipeline  *capture.Pipeline
	Clipboard clipboard.Writer
	// OutputDir receives downloaded images. Empty means the working directory.
	OutputDir string
	Refs      *Refs
	Logger    *slog.Logger
}

func (c *Config) defaults() {
	if c.Refs == nil {
		c.Refs = NewRefs()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Exporter runs actions. It holds no session state and may be used from
// any goroutine.
type Exporter struct {
	cfg Config
}

// New returns an Exporter.
func New(cfg Config) *Exporter {
	cfg.defaults()
	return &Exporter{cfg: cfg}
}

// Refs returns the temporary file registry used for previews.
func (e *Exporter) Refs() *Refs {
	return e.cfg.Refs
}

// Pipeline returns the capture pipeline.
func (e *Exporter) Pipeline() *capture.Pipeline {
	return e.cfg.Pipeline
}

// Result is the outcome of one action.
type Result struct {
	Action Action
	Blob   capture.Blob
	// Path is the saved file for downloads and the temporary file for
	// previews.
	Path string
	Err  error
	// Seq echoes the sequence number of the request that produced it.
	Seq uint64
}

// Run dispatches to the action's method.
func (e *Exporter) Run(ctx context.Context, action Action, opts options.Options) Result {
	res := Result{Action: action}
	switch action {
	case ActionCopy:
		res.Blob, res.Err = e.Copy(ctx, opts)
	case ActionDownload:
		res.Blob, res.Path, res.Err = e.Download(ctx, opts)
	case ActionPreview:
		res.Blob, res.Path, res.Err = e.Preview(ctx, opts)
	default:
		res.Err = fmt.Errorf("export: unknown action %q", action)
	}
	return res
}

// Copy captures the formula and writes it to the clipboard tagged with its
// MIME type. Only PNG is accepted.
func (e *Exporter) Copy(ctx context.Context, opts options.Options) (capture.Blob, error) {
	if !opts.CanCopy() {
		return capture.Blob{}, ErrNotAvailable
	}
	blob, err := e.capture(ctx, opts)
	if err != nil {
		return capture.Blob{}, err
	}
	if e.cfg.Clipboard == nil {
		return capture.Blob{}, fmt.Errorf("export: %w", clipboard.ErrUnsupported)
	}
	if err := e.cfg.Clipboard.WriteImage(string(blob.Type), blob.Data); err != nil {
		return capture.Blob{}, err
	}
	return blob, nil
}

// Download captures the formula and saves it under OutputDir with a name
// derived from the markup. It returns the written path.
func (e *Exporter) Download(ctx context.Context, opts options.Options) (capture.Blob, string, error) {
	if !opts.CanExport() {
		return capture.Blob{}, "", ErrNotAvailable
	}
	blob, err := e.capture(ctx, opts)
	if err != nil {
		return capture.Blob{}, "", err
	}
	dir := e.cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return capture.Blob{}, "", fmt.Errorf("export: output dir: %w", err)
	}
	path := filepath.Join(dir, filename.Build(opts.Text, opts.Type))
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return capture.Blob{}, "", fmt.Errorf("export: save: %w", err)
	}
	return blob, path, nil
}

// Preview captures the formula into a temporary file. The caller owns the
// returned path and must release it through Refs().Revoke.
func (e *Exporter) Preview(ctx context.Context, opts options.Options) (capture.Blob, string, error) {
	if !opts.CanExport() {
		return capture.Blob{}, "", ErrNotAvailable
	}
	blob, err := e.capture(ctx, opts)
	if err != nil {
		return capture.Blob{}, "", err
	}
	path, err := e.cfg.Refs.Create(blob)
	if err != nil {
		return capture.Blob{}, "", err
	}
	return blob, path, nil
}

func (e *Exporter) capture(ctx context.Context, opts options.Options) (capture.Blob, error) {
	if e.cfg.Pipeline == nil {
		return capture.Blob{}, errors.New("export: no capture pipeline")
	}
	return e.cfg.Pipeline.Capture(ctx, capture.SourceFrom(opts), opts)
}
