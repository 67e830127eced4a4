package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/csheth/latexr/internal/capture"
	"github.com/csheth/latexr/internal/clipboard"
	"github.com/csheth/latexr/internal/config"
	"github.com/csheth/latexr/internal/export"
	"github.com/csheth/latexr/internal/prefs"
)

// app holds the components shared by every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	manager   *capture.Manager
	exporter  *export.Exporter
	clipboard *clipboard.System
	prefs     *prefs.Store
	userAgent func() string
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closer := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		logCloser: closer,
		clipboard: clipboard.NewSystem(clipboard.Config{Logger: logger}),
		prefs:     prefs.Open(cfg.PrefsPath),
		userAgent: func() string { return "" },
	}

	var rasterizer capture.Rasterizer
	switch cfg.Renderer {
	case config.RendererGlyph:
		rasterizer = capture.NewGlyphRasterizer()
	default:
		a.manager = capture.NewManager(capture.BrowserConfig{
			RemoteURL: cfg.Browser.RemoteURL,
			Bin:       cfg.Browser.Bin,
			Logger:    logger,
		})
		var assets *capture.AssetCache
		if cfg.Browser.AssetDir != "" {
			assets, err = capture.NewAssetCache(capture.AssetCacheConfig{Dir: cfg.Browser.AssetDir, Logger: logger})
			if err != nil {
				logger.Warn("latexr: asset cache disabled", "error", err)
				assets = nil
			}
		}
		rod := capture.NewRodRasterizer(capture.RodConfig{
			Manager:  a.manager,
			KaTeXURL: cfg.Browser.KaTeXURL,
			Assets:   assets,
			Logger:   logger,
		})
		a.userAgent = rod.UserAgent
		rasterizer = rod
	}

	a.exporter = export.New(export.Config{
		Pipeline: capture.NewPipeline(capture.Config{
			Rasterizer: rasterizer,
			Timeout:    cfg.Capture.Timeout,
			Logger:     logger,
		}),
		Clipboard: a.clipboard,
		OutputDir: cfg.OutputDir,
		Refs:      export.NewRefs(),
		Logger:    logger,
	})
	logger.Debug("latexr: started", "renderer", rasterizer.Name(), "config", cfgFile)
	return a, nil
}

// Close stops the browser, removes temporary files and closes the log.
func (a *app) Close() {
	if err := a.exporter.Refs().RevokeAll(); err != nil {
		a.logger.Warn("latexr: remove temporary files", "error", err)
	}
	if a.manager != nil {
		if err := a.manager.Close(); err != nil {
			a.logger.Warn("latexr: close browser", "error", err)
		}
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// setupLogger writes text logs to cfg.Path, falling back to stderr when the
// file cannot be opened.
func setupLogger(cfg config.LogConfig) (*slog.Logger, io.Closer) {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(f, opts)), f
}
