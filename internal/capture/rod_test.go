package capture

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/csheth/latexr/internal/options"
)

// Needs a Chrome binary and network access to the KaTeX assets.
func TestRodRasterizerScales(t *testing.T) {
	if os.Getenv("LATEXR_BROWSER_TESTS") == "" {
		t.Skip("set LATEXR_BROWSER_TESTS=1 to run browser captures")
	}
	mgr := NewManager(BrowserConfig{RemoteURL: os.Getenv("LATEXR_BROWSER_REMOTE_URL")})
	t.Cleanup(func() { _ = mgr.Close() })
	r := NewRodRasterizer(RodConfig{Manager: mgr})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	opts := pngOptions(`\frac{1}{2}`, 1)
	one, err := r.Rasterize(ctx, SourceFrom(opts), opts)
	if err != nil {
		t.Fatalf("Rasterize(scale 1) error = %v", err)
	}
	opts.Scale = 2
	two, err := r.Rasterize(ctx, SourceFrom(opts), opts)
	if err != nil {
		t.Fatalf("Rasterize(scale 2) error = %v", err)
	}
	a, err := Decode(one)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode(two)
	if err != nil {
		t.Fatal(err)
	}
	if dx := b.Bounds().Dx() - 2*a.Bounds().Dx(); dx < -2 || dx > 2 {
		t.Fatalf("width did not double: %d -> %d", a.Bounds().Dx(), b.Bounds().Dx())
	}

	opts.Type = options.TypeWEBP
	opts.Quality = 50
	if _, err := r.Rasterize(ctx, SourceFrom(opts), opts); err != nil {
		t.Fatalf("webp capture: %v", err)
	}
	if r.UserAgent() == "" {
		t.Fatal("user agent should be known after a capture")
	}
}

func TestRodRasterizerServesCachedAssets(t *testing.T) {
	if os.Getenv("LATEXR_BROWSER_TESTS") == "" {
		t.Skip("set LATEXR_BROWSER_TESTS=1 to run browser captures")
	}
	dir := t.TempDir()
	assets, err := NewAssetCache(AssetCacheConfig{Dir: dir})
	if err != nil {
		t.Fatalf("NewAssetCache: %v", err)
	}
	mgr := NewManager(BrowserConfig{RemoteURL: os.Getenv("LATEXR_BROWSER_REMOTE_URL")})
	t.Cleanup(func() { _ = mgr.Close() })
	r := NewRodRasterizer(RodConfig{Manager: mgr, Assets: assets})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	opts := pngOptions(`x^2`, 1)
	if _, err := r.Rasterize(ctx, SourceFrom(opts), opts); err != nil {
		t.Fatalf("Rasterize error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("expected KaTeX assets in the cache dir")
	}
}
