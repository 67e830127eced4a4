// Package capture rasterizes a rendered formula into an encoded image.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/csheth/latexr/internal/options"
)

var (
	// ErrUnsupportedType is returned when a rasterizer cannot encode the
	// requested image type.
	ErrUnsupportedType = errors.New("capture: unsupported image type")
	// ErrEmptyMarkup is returned when there is nothing to rasterize.
	ErrEmptyMarkup = errors.New("capture: empty markup")
)

// Source is the formula element being captured.
type Source struct {
	Markup   string
	MathMode bool
}

// SourceFrom returns the element currently displayed for opts.
func SourceFrom(opts options.Options) Source {
	return Source{Markup: opts.Text, MathMode: opts.MathMode}
}

// Delimited returns the markup as handed to the renderer: wrapped in $
// delimiters in math mode.
func (s Source) Delimited() string {
	if s.MathMode {
		return "$" + s.Markup + "$"
	}
	return s.Markup
}

// Blob is an encoded image.
type Blob struct {
	Data   []byte
	Type   options.ImageType
	Width  int
	Height int
}

// Size returns the encoded length in bytes.
func (b Blob) Size() int {
	return len(b.Data)
}

// Rasterizer turns a formula element into encoded image bytes. Background
// fills the element box, Scale magnifies width and height uniformly, Type
// selects the encoder and Quality applies to lossy types only.
type Rasterizer interface {
	Rasterize(ctx context.Context, src Source, opts options.Options) (Blob, error)
	Name() string
}

// Config wires a Pipeline.
type Config struct {
	Rasterizer Rasterizer
	// Timeout bounds a single capture. Zero means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline runs captures against a Rasterizer.
type Pipeline struct {
	cfg Config
}

// NewPipeline returns a pipeline using cfg.Rasterizer.
func NewPipeline(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg}
}

// Rasterizer returns the backing rasterizer.
func (p *Pipeline) Rasterizer() Rasterizer {
	return p.cfg.Rasterizer
}

// Capture rasterizes src with opts. Failures are returned to the caller as
// is; the pipeline does not retry.
func (p *Pipeline) Capture(ctx context.Context, src Source, opts options.Options) (Blob, error) {
	if p.cfg.Rasterizer == nil {
		return Blob{}, errors.New("capture: no rasterizer configured")
	}
	if !opts.Type.Valid() {
		return Blob{}, fmt.Errorf("%w: %q", ErrUnsupportedType, opts.Type)
	}
	if opts.Scale <= 0 {
		return Blob{}, fmt.Errorf("capture: invalid scale %v", opts.Scale)
	}
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	blob, err := p.cfg.Rasterizer.Rasterize(ctx, src, opts)
	if err != nil {
		return Blob{}, err
	}
	if blob.Type == "" {
		blob.Type = opts.Type
	}
	if blob.Width == 0 || blob.Height == 0 {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(blob.Data)); err == nil {
			blob.Width, blob.Height = cfg.Width, cfg.Height
		}
	}
	p.cfg.Logger.Debug("capture: done",
		"rasterizer", p.cfg.Rasterizer.Name(),
		"type", blob.Type,
		"scale", opts.Scale,
		"bytes", blob.Size(),
		"width", blob.Width,
		"height", blob.Height,
		"duration", time.Since(started))
	return blob, nil
}
