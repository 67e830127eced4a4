package capture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestAssetCacheReusesFreshFile(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Etag", `"v1"`)
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte(".katex{}"))
	}))
	t.Cleanup(server.Close)

	cache, err := NewAssetCache(AssetCacheConfig{Dir: t.TempDir(), Client: server.Client()})
	if err != nil {
		t.Fatalf("NewAssetCache: %v", err)
	}
	ctx := context.Background()

	data, contentType, err := cache.Load(ctx, server.URL+"/dist/katex.min.css")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != ".katex{}" || contentType != "text/css" {
		t.Fatalf("unexpected asset %q (%s)", data, contentType)
	}
	if _, _, err := cache.Load(ctx, server.URL+"/dist/katex.min.css"); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected single download, got %d hits", got)
	}
}

func TestAssetCacheRevalidatesStaleFile(t *testing.T) {
	var full atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		full.Add(1)
		w.Header().Set("Etag", `"v1"`)
		_, _ = w.Write([]byte("katex()"))
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	cache, err := NewAssetCache(AssetCacheConfig{Dir: dir, TTL: time.Minute, Client: server.Client()})
	if err != nil {
		t.Fatalf("NewAssetCache: %v", err)
	}
	ctx := context.Background()
	assetURL := server.URL + "/dist/katex.min.js"

	path, err := cache.Fetch(ctx, assetURL)
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if _, err := cache.Fetch(ctx, assetURL); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := full.Load(); got != 1 {
		t.Fatalf("expected 304 on revalidation, got %d full downloads", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if time.Since(info.ModTime()) > time.Minute {
		t.Fatalf("revalidation did not touch the cached file")
	}
}

func TestAssetCacheServesStaleWhenOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("font-bytes"))
	}))

	dir := t.TempDir()
	cache, err := NewAssetCache(AssetCacheConfig{Dir: dir, TTL: time.Minute, Client: server.Client()})
	if err != nil {
		t.Fatalf("NewAssetCache: %v", err)
	}
	ctx := context.Background()
	assetURL := server.URL + "/dist/fonts/KaTeX_Main-Regular.woff2"

	path, err := cache.Fetch(ctx, assetURL)
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}
	if filepath.Ext(path) != ".woff2" {
		t.Fatalf("cache key dropped the extension: %s", path)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	server.Close()

	data, contentType, err := cache.Load(ctx, assetURL)
	if err != nil {
		t.Fatalf("stale load: %v", err)
	}
	if string(data) != "font-bytes" {
		t.Fatalf("unexpected body %q", data)
	}
	if contentType == "" {
		t.Fatalf("expected a content type")
	}
}

func TestAssetCacheReportsMissWhenOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	cache, err := NewAssetCache(AssetCacheConfig{Dir: t.TempDir(), Client: server.Client()})
	if err != nil {
		t.Fatalf("NewAssetCache: %v", err)
	}
	if _, err := cache.Fetch(context.Background(), server.URL+"/missing.js"); err == nil {
		t.Fatalf("expected error for missing asset")
	}
}

func TestNewAssetCacheRequiresDir(t *testing.T) {
	if _, err := NewAssetCache(AssetCacheConfig{}); err == nil {
		t.Fatalf("expected error without dir")
	}
}

func TestAssetCacheRevalidatesWithLastModified(t *testing.T) {
	const stamp = "Mon, 02 Jan 2006 15:04:05 GMT"
	var conditional atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-Modified-Since") == stamp {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", stamp)
		_, _ = w.Write([]byte("body"))
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	cache, err := NewAssetCache(AssetCacheConfig{Dir: dir, TTL: time.Minute, Client: server.Client()})
	if err != nil {
		t.Fatalf("NewAssetCache: %v", err)
	}
	ctx := context.Background()
	assetURL := server.URL + "/dist/contrib/auto-render.min.js"
	path, err := cache.Fetch(ctx, assetURL)
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if _, err := cache.Fetch(ctx, assetURL); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if conditional.Load() != 1 {
		t.Fatalf("expected one conditional request, got %d", conditional.Load())
	}
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.part"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("temporary files left behind: %v", leftovers)
	}
}
