// Package config loads latexr settings from defaults, a YAML file and
// LATEXR_* environment variables, in that order.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/csheth/latexr/internal/capture"
	"github.com/csheth/latexr/internal/notify"
	"github.com/csheth/latexr/internal/share"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: LATEXR_BROWSER__REMOTE_URL sets browser.remote_url.
const EnvPrefix = "LATEXR_"

// DefaultCaptureTimeout bounds one capture.
const DefaultCaptureTimeout = 30 * time.Second

// DefaultPath returns <user config dir>/latexr/config.yaml.
func DefaultPath() string {
	return filepath.Join(userDir(os.UserConfigDir), "latexr", "config.yaml")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	cache := filepath.Join(userDir(os.UserCacheDir), "latexr")
	return &Config{
		Renderer:     RendererBrowser,
		ShareBaseURL: share.DefaultBaseURL,
		OutputDir:    ".",
		PrefsPath:    filepath.Join(userDir(os.UserConfigDir), "latexr", "prefs.json"),
		History:      HistoryConfig{OpenPolicy: "gated"},
		Notify:       NotifyConfig{Duration: notify.DefaultDuration},
		Capture:      CaptureConfig{Timeout: DefaultCaptureTimeout},
		Browser: BrowserConfig{
			KaTeXURL: capture.DefaultKaTeXURL,
			AssetDir: filepath.Join(cache, "katex"),
		},
		Log: LogConfig{
			Path:  filepath.Join(cache, "latexr.log"),
			Level: "info",
		},
	}
}

func userDir(lookup func() (string, error)) string {
	dir, err := lookup()
	if err != nil || dir == "" {
		return os.TempDir()
	}
	return dir
}

// Load reads configuration from the given YAML file, then overlays
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validRenderers = map[Renderer]bool{
	RendererBrowser: true,
	RendererGlyph:   true,
}

var validPolicies = map[string]bool{
	"gated":  true,
	"always": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validRenderers[c.Renderer] {
		return fmt.Errorf("invalid renderer %q: must be one of browser, glyph", c.Renderer)
	}
	if c.ShareBaseURL == "" {
		return fmt.Errorf("share_base_url is required")
	}
	if !validPolicies[c.History.OpenPolicy] {
		return fmt.Errorf("invalid history.open_policy %q: must be gated or always", c.History.OpenPolicy)
	}
	if c.Notify.Duration <= 0 {
		return fmt.Errorf("notify.duration must be positive")
	}
	if c.Capture.Timeout < 0 {
		return fmt.Errorf("capture.timeout must be non-negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level; empty means info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", l.Level, err)
	}
	return level, nil
}
