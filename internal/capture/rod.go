package capture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/csheth/latexr/internal/options"
)

// RodConfig configures a RodRasterizer.
type RodConfig struct {
	Manager *Manager
	// KaTeXURL is the base URL of the KaTeX distribution.
	KaTeXURL string
	// Assets, when set, serves KaTeX files from disk instead of the network.
	Assets *AssetCache
	Logger *slog.Logger
}

// RodRasterizer renders markup with KaTeX inside a headless Chrome page and
// screenshots the formula element.
type RodRasterizer struct {
	cfg RodConfig
}

// NewRodRasterizer returns a rasterizer driving cfg.Manager's browser.
func NewRodRasterizer(cfg RodConfig) *RodRasterizer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.KaTeXURL == "" {
		cfg.KaTeXURL = DefaultKaTeXURL
	}
	return &RodRasterizer{cfg: cfg}
}

// Name implements Rasterizer.
func (r *RodRasterizer) Name() string {
	return "browser"
}

// UserAgent reports the hosting browser's user agent, "" before first use.
func (r *RodRasterizer) UserAgent() string {
	return r.cfg.Manager.UserAgent()
}

var screenshotFormats = map[options.ImageType]proto.PageCaptureScreenshotFormat{
	options.TypePNG:  proto.PageCaptureScreenshotFormatPng,
	options.TypeJPEG: proto.PageCaptureScreenshotFormatJpeg,
	options.TypeWEBP: proto.PageCaptureScreenshotFormatWebp,
}

// Rasterize implements Rasterizer.
func (r *RodRasterizer) Rasterize(ctx context.Context, src Source, opts options.Options) (Blob, error) {
	format, ok := screenshotFormats[opts.Type]
	if !ok {
		return Blob{}, fmt.Errorf("%w: %s", ErrUnsupportedType, opts.Type)
	}
	doc, err := renderPage(r.cfg.KaTeXURL, src, opts.Background)
	if err != nil {
		return Blob{}, err
	}

	b, err := r.cfg.Manager.Browser(ctx)
	if err != nil {
		return Blob{}, err
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return Blob{}, fmt.Errorf("capture: open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			r.cfg.Logger.Debug("capture: close page", "error", err)
		}
	}()
	page = page.Context(ctx)

	if r.cfg.Assets != nil {
		router := page.HijackRequests()
		router.MustAdd(r.cfg.KaTeXURL+"/*", func(h *rod.Hijack) {
			r.serveAsset(ctx, h)
		})
		go router.Run()
		defer func() {
			if err := router.Stop(); err != nil {
				r.cfg.Logger.Debug("capture: stop router", "error", err)
			}
		}()
	}

	// Keep the page itself transparent so only the element fill shows.
	transparent := 0.0
	err = proto.EmulationSetDefaultBackgroundColorOverride{
		Color: &proto.DOMRGBA{R: 0, G: 0, B: 0, A: &transparent},
	}.Call(page)
	if err != nil {
		return Blob{}, fmt.Errorf("capture: background override: %w", err)
	}

	if err := page.SetDocumentContent(doc); err != nil {
		return Blob{}, fmt.Errorf("capture: load page: %w", err)
	}
	el, err := page.Element(formulaSelector + "[" + stateAttr + "]")
	if err != nil {
		return Blob{}, fmt.Errorf("capture: wait for render: %w", err)
	}
	state, err := el.Attribute(stateAttr)
	if err != nil {
		return Blob{}, fmt.Errorf("capture: read render state: %w", err)
	}
	if state == nil || *state != "ready" {
		reason := "unknown error"
		if msg, err := el.Attribute(errorAttr); err == nil && msg != nil {
			reason = *msg
		}
		return Blob{}, fmt.Errorf("capture: render failed: %s", reason)
	}

	shape, err := el.Shape()
	if err != nil {
		return Blob{}, fmt.Errorf("capture: element box: %w", err)
	}
	box := shape.Box()
	req := &proto.PageCaptureScreenshot{
		Format: format,
		Clip: &proto.PageViewport{
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Scale:  opts.Scale,
		},
		CaptureBeyondViewport: true,
	}
	if opts.Type.Lossy() {
		quality := opts.Quality
		req.Quality = &quality
	}
	data, err := page.Screenshot(false, req)
	if err != nil {
		return Blob{}, fmt.Errorf("capture: screenshot: %w", err)
	}
	return Blob{Data: data, Type: opts.Type}, nil
}

func (r *RodRasterizer) serveAsset(ctx context.Context, h *rod.Hijack) {
	assetURL := h.Request.URL().String()
	data, contentType, err := r.cfg.Assets.Load(ctx, assetURL)
	if err != nil {
		r.cfg.Logger.Warn("capture: asset cache unavailable", "url", assetURL, "error", err)
		h.ContinueRequest(&proto.FetchContinueRequest{})
		return
	}
	h.Response.SetHeader(
		"Content-Type", contentType,
		"Access-Control-Allow-Origin", "*",
	)
	h.Response.SetBody(data)
}
