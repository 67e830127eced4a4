package capture

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

const (
	defaultAssetTTL     = 24 * time.Hour
	defaultAssetTimeout = 30 * time.Second
)

// AssetCacheConfig configures an AssetCache.
type AssetCacheConfig struct {
	// Dir holds cached files. Required.
	Dir string
	// TTL is how long a file is served without revalidation.
	TTL    time.Duration
	Client *http.Client
	Logger *slog.Logger
}

func (c *AssetCacheConfig) defaults() {
	if c.TTL <= 0 {
		c.TTL = defaultAssetTTL
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: defaultAssetTimeout}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// AssetCache keeps renderer assets (scripts, stylesheets, fonts) on disk so
// repeated captures do not refetch them. Stale files are revalidated with
// conditional requests and still served when the network is down.
type AssetCache struct {
	cfg AssetCacheConfig
}

type assetMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"lastModified,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	CachedAt     time.Time `json:"cachedAt"`
}

// assetEntry is the pair of files backing one URL.
type assetEntry struct {
	body string
	meta string
}

// NewAssetCache creates cfg.Dir if needed.
func NewAssetCache(cfg AssetCacheConfig) (*AssetCache, error) {
	if cfg.Dir == "" {
		return nil, errors.New("capture: asset cache dir is required")
	}
	cfg.defaults()
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("capture: asset cache dir: %w", err)
	}
	return &AssetCache{cfg: cfg}, nil
}

// Load returns the body and content type of assetURL, from disk when fresh.
func (c *AssetCache) Load(ctx context.Context, assetURL string) ([]byte, string, error) {
	bodyPath, err := c.Fetch(ctx, assetURL)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(bodyPath)
	if err != nil {
		return nil, "", err
	}
	meta, _ := readMeta(c.entry(assetURL).meta)
	contentType := meta.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(bodyPath))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// Fetch returns the cached file for assetURL. Files younger than the TTL
// are used as is; older ones are revalidated, and kept when the network
// fails.
func (c *AssetCache) Fetch(ctx context.Context, assetURL string) (string, error) {
	e := c.entry(assetURL)
	info, err := os.Stat(e.body)
	cached := err == nil && info.Size() > 0
	if cached && time.Since(info.ModTime()) < c.cfg.TTL {
		return e.body, nil
	}
	var meta assetMeta
	if cached {
		meta, _ = readMeta(e.meta)
	}
	err = c.refresh(ctx, assetURL, e, meta)
	switch {
	case err == nil:
		return e.body, nil
	case cached:
		c.cfg.Logger.Warn("capture: serving stale asset", "url", assetURL, "error", err)
		return e.body, nil
	default:
		return "", err
	}
}

// refresh downloads assetURL, sending meta's validators so an unchanged
// asset costs a 304.
func (c *AssetCache) refresh(ctx context.Context, assetURL string, e assetEntry, meta assetMeta) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}
	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		now := time.Now()
		if err := os.Chtimes(e.body, now, now); err != nil {
			return err
		}
		meta.CachedAt = now.UTC()
		return writeMeta(e.meta, meta)
	case http.StatusOK:
		return c.store(resp, assetURL, e)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("capture: asset download failed: %s (%s)", resp.Status, bytes.TrimSpace(body))
	}
}

// store writes the response next to the cache entry and renames it in, so
// readers never see a partial file.
func (c *AssetCache) store(resp *http.Response, assetURL string, e assetEntry) error {
	tmp, err := os.CreateTemp(c.cfg.Dir, "asset-*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), e.body); err != nil {
		return err
	}
	return writeMeta(e.meta, assetMeta{
		URL:          assetURL,
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		ContentType:  resp.Header.Get("Content-Type"),
		CachedAt:     time.Now().UTC(),
	})
}

func (c *AssetCache) entry(assetURL string) assetEntry {
	base := filepath.Join(c.cfg.Dir, cacheKey(assetURL))
	return assetEntry{body: base, meta: base + ".json"}
}

// cacheKey hashes the URL and keeps its extension so the content type can
// be guessed from the file name.
func cacheKey(assetURL string) string {
	sum := sha1.Sum([]byte(assetURL))
	key := hex.EncodeToString(sum[:])
	if u, err := url.Parse(assetURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= 8 {
			key += ext
		}
	}
	return key
}

func readMeta(p string) (assetMeta, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return assetMeta{}, err
	}
	var meta assetMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return assetMeta{}, err
	}
	return meta, nil
}

func writeMeta(p string, meta assetMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}
