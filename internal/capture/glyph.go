package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/csheth/latexr/internal/options"
)

// glyphPadding matches the padding around the formula element in the
// browser page, in unscaled pixels.
const glyphPadding = 8

// GlyphRasterizer draws the markup source with a fixed bitmap face. It needs
// no browser, so it works offline and in tests, but it does not typeset: the
// image shows the markup itself. WEBP is not supported.
type GlyphRasterizer struct {
	Face font.Face
	Ink  color.Color
}

// NewGlyphRasterizer returns a rasterizer drawing black 7x13 glyphs.
func NewGlyphRasterizer() *GlyphRasterizer {
	return &GlyphRasterizer{Face: basicfont.Face7x13, Ink: color.Black}
}

// Name implements Rasterizer.
func (g *GlyphRasterizer) Name() string {
	return "glyph"
}

// Rasterize implements Rasterizer.
func (g *GlyphRasterizer) Rasterize(ctx context.Context, src Source, opts options.Options) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	if opts.Type != options.TypePNG && opts.Type != options.TypeJPEG {
		return Blob{}, fmt.Errorf("%w: %s (glyph rasterizer)", ErrUnsupportedType, opts.Type)
	}

	base := g.drawBase(src, opts.Background)
	width := scaledLength(base.Bounds().Dx(), opts.Scale)
	height := scaledLength(base.Bounds().Dy(), opts.Scale)
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), base, base.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	switch opts.Type {
	case options.TypePNG:
		if err := png.Encode(&buf, out); err != nil {
			return Blob{}, fmt.Errorf("capture: encode png: %w", err)
		}
	case options.TypeJPEG:
		quality := opts.Quality
		if quality < 1 {
			quality = 1
		}
		if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
			return Blob{}, fmt.Errorf("capture: encode jpeg: %w", err)
		}
	}
	return Blob{Data: buf.Bytes(), Type: opts.Type, Width: width, Height: height}, nil
}

func (g *GlyphRasterizer) drawBase(src Source, background string) *image.NRGBA {
	face := g.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	ink := g.Ink
	if ink == nil {
		ink = color.Black
	}

	lines := strings.Split(src.Markup, "\n")
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()
	textWidth := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > textWidth {
			textWidth = w
		}
	}

	bounds := image.Rect(0, 0, textWidth+2*glyphPadding, len(lines)*lineHeight+2*glyphPadding)
	img := image.NewNRGBA(bounds)
	fill, _ := ParseColor(background)
	xdraw.Draw(img, bounds, image.NewUniform(fill), image.Point{}, xdraw.Src)

	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: face}
	for i, line := range lines {
		drawer.Dot = fixed.P(glyphPadding, glyphPadding+ascent+i*lineHeight)
		drawer.DrawString(line)
	}
	return img
}

func scaledLength(n int, scale float64) int {
	v := int(math.Round(float64(n) * scale))
	if v < 1 {
		return 1
	}
	return v
}
