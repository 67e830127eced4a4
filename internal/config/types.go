package config

import "time"

// Renderer selects the rasterizer behind every capture.
type Renderer string

const (
	// RendererBrowser typesets with KaTeX in headless Chrome.
	RendererBrowser Renderer = "browser"
	// RendererGlyph draws the raw markup with a bitmap font, offline.
	RendererGlyph Renderer = "glyph"
)

// Config is the top-level latexr configuration, corresponding to config.yaml.
type Config struct {
	Renderer     Renderer      `yaml:"renderer" koanf:"renderer"`
	ShareBaseURL string        `yaml:"share_base_url" koanf:"share_base_url"`
	OutputDir    string        `yaml:"output_dir" koanf:"output_dir"`
	PrefsPath    string        `yaml:"prefs_path" koanf:"prefs_path"`
	History      HistoryConfig `yaml:"history" koanf:"history"`
	Notify       NotifyConfig  `yaml:"notify" koanf:"notify"`
	Capture      CaptureConfig `yaml:"capture" koanf:"capture"`
	Browser      BrowserConfig `yaml:"browser" koanf:"browser"`
	Log          LogConfig     `yaml:"log" koanf:"log"`
}

// HistoryConfig holds history settings.
type HistoryConfig struct {
	// OpenPolicy is "gated" (needs entries) or "always".
	OpenPolicy string `yaml:"open_policy" koanf:"open_policy"`
}

// NotifyConfig holds banner settings.
type NotifyConfig struct {
	Duration time.Duration `yaml:"duration" koanf:"duration"`
}

// CaptureConfig holds capture settings.
type CaptureConfig struct {
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// BrowserConfig configures the headless browser.
type BrowserConfig struct {
	// RemoteURL attaches to a running browser instead of launching one.
	RemoteURL string `yaml:"remote_url" koanf:"remote_url"`
	Bin       string `yaml:"bin" koanf:"bin"`
	KaTeXURL  string `yaml:"katex_url" koanf:"katex_url"`
	// AssetDir caches KaTeX files between runs; empty fetches them every time.
	AssetDir string `yaml:"asset_dir" koanf:"asset_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `yaml:"path" koanf:"path"`
	Level string `yaml:"level" koanf:"level"`
}
