package glyph

import (
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// Cell is one glyph of a mapped frame together with its position in the set.
type Cell struct {
	Glyph rune
	Index int
}

// Grid is a row-major grid of glyphs with the dimensions of the frame it came from.
type Grid struct {
	Width  int
	Height int
	Cells  []Cell
}

// At returns the cell at column x, row y.
func (g Grid) At(x, y int) Cell {
	return g.Cells[y*g.Width+x]
}

// String renders the grid as plain text, one line per row.
func (g Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.Width*g.Height + g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			sb.WriteRune(g.Cells[y*g.Width+x].Glyph)
		}
		if y < g.Height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// MapIntensity buckets a 0-255 intensity linearly across n glyphs.
// Intensity 0 maps to index 0 and 255 maps to n-1.
func MapIntensity(v uint8, n int) int {
	if n <= 1 {
		return 0
	}
	return int(v) * (n - 1) / 255
}

// Grayscale scales img to w×h and converts it to 8-bit luminance.
func Grayscale(img image.Image, w, h int) *image.Gray {
	if w <= 0 || h <= 0 {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	gray := image.NewGray(scaled.Bounds())
	for i, j := 0, 0; i < len(scaled.Pix); i, j = i+4, j+1 {
		gray.Pix[j] = luminance(scaled.Pix[i], scaled.Pix[i+1], scaled.Pix[i+2])
	}
	return gray
}

// MapFrame maps every pixel of frame to a glyph of set.
func MapFrame(frame *image.Gray, set Set) Grid {
	b := frame.Bounds()
	g := Grid{
		Width:  b.Dx(),
		Height: b.Dy(),
		Cells:  make([]Cell, b.Dx()*b.Dy()),
	}
	if set.Len() == 0 {
		return g
	}
	n := set.Len()
	for y := 0; y < g.Height; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+g.Width]
		for x, v := range row {
			idx := MapIntensity(v, n)
			g.Cells[y*g.Width+x] = Cell{Glyph: set.At(idx), Index: idx}
		}
	}
	return g
}

// Map resizes img to w×h, converts it to luminance and maps it onto set.
// It has no state; the same inputs always produce the same grid.
func Map(img image.Image, w, h int, set Set) Grid {
	return MapFrame(Grayscale(img, w, h), set)
}

// luminance computes perceived brightness (ITU-R BT.601).
func luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}
