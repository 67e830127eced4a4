package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"

	"github.com/csheth/latexr/internal/capture"
)

// halfBlock draws two vertically stacked pixels per cell: the foreground
// colours the upper half, the background the lower.
const halfBlock = "▀"

// previewMatte is composited under transparent pixels.
var previewMatte = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// renderHalfBlocks fits img into cols x rows cells, keeping its aspect
// ratio, and returns one line per cell row.
func renderHalfBlocks(img image.Image, cols, rows int) string {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || cols <= 0 || rows <= 0 {
		return ""
	}
	w, fitH := fitBox(b.Dx(), b.Dy(), cols, rows*2)
	h := fitH + fitH%2
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(previewMatte), image.Point{}, xdraw.Src)
	xdraw.ApproxBiLinear.Scale(dst, image.Rect(0, 0, w, fitH), img, b, xdraw.Over, nil)

	lines := make([]string, 0, h/2)
	for y := 0; y < h; y += 2 {
		var line strings.Builder
		for x := 0; x < w; x++ {
			top := dst.NRGBAAt(x, y)
			bottom := dst.NRGBAAt(x, y+1)
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top))).
				Background(lipgloss.Color(hexColor(bottom)))
			line.WriteString(style.Render(halfBlock))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// fitBox scales w x h down to fit maxW x maxH. Images already inside the
// box keep their size; the result is at least 1x1.
func fitBox(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	outW, outH := maxW, h*maxW/w
	if outH > maxH {
		outW, outH = w*maxH/h, maxH
	}
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// previewCache keeps the last rendering so View does not decode and
// rescale the image on every frame.
type previewCache struct {
	path       string
	cols, rows int
	rendered   string
	err        error
}

func (c *previewCache) render(blob capture.Blob, path string, cols, rows int) (string, error) {
	if c.path == path && c.cols == cols && c.rows == rows && path != "" {
		return c.rendered, c.err
	}
	c.path, c.cols, c.rows = path, cols, rows
	img, err := capture.Decode(blob)
	if err != nil {
		c.rendered, c.err = "", err
		return "", err
	}
	c.rendered, c.err = renderHalfBlocks(img, cols, rows), nil
	return c.rendered, nil
}
