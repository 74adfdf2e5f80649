// Package render draws glyph grids as coloured terminal text, with brightness
// and jitter driven by a loudness level.
package render

import (
	"math/rand/v2"
	"strings"

	"github.com/olivier-w/glyphcam/internal/glyph"
)

// Theme holds the colours of the art area.
type Theme struct {
	Background RGB
	Dim        RGB
	Bright     RGB
}

// DefaultTheme is green-on-black.
var DefaultTheme = Theme{
	Background: RGB{R: 5, G: 30, B: 5},
	Dim:        RGB{R: 10, G: 150, B: 30},
	Bright:     RGB{R: 20, G: 255, B: 60},
}

// jitterThreshold is the loudness above which glyphs start to shake.
const jitterThreshold = 0.5

// GlyphColor returns the colour of the glyph at index idx of an n-glyph set.
// Earlier glyphs are brighter and loudness scales brightness between 70% and 100%.
func GlyphColor(theme Theme, idx, n int, level float64) RGB {
	if n <= 0 {
		return theme.Dim
	}
	charBrightness := 1 - float64(idx)/float64(n)
	base := 0.7 + 0.3*clamp01(level)
	return lerp(theme.Dim, theme.Bright, charBrightness*base)
}

// JitterAmount returns the maximum displacement in cells for level.
func JitterAmount(level float64) int {
	if level <= jitterThreshold {
		return 0
	}
	return int(clamp01(level) * 2)
}

type cell struct {
	glyph rune
	color RGB
	set   bool
}

// Compositor lays a grid out on a canvas and encodes it with ANSI colours.
// It is not safe for concurrent use.
type Compositor struct {
	theme   Theme
	rng     *rand.Rand
	profile colorProfile

	canvas []cell
	sb     strings.Builder
}

// NewCompositor creates a compositor. rng drives jitter; nil seeds a random source.
func NewCompositor(theme Theme, rng *rand.Rand) *Compositor {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Compositor{
		theme:   theme,
		rng:     rng,
		profile: currentColorProfile(),
	}
}

// Theme returns the compositor colours.
func (c *Compositor) Theme() Theme { return c.theme }

// layout places every grid cell on the canvas. Cells are visited row-major, so
// later glyphs overwrite earlier ones and displaced glyphs outside the grid are dropped.
func (c *Compositor) layout(grid glyph.Grid, setLen int, level float64) []cell {
	size := grid.Width * grid.Height
	if cap(c.canvas) < size {
		c.canvas = make([]cell, size)
	}
	canvas := c.canvas[:size]
	clear(canvas)

	amount := JitterAmount(level)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			src := grid.At(x, y)
			tx, ty := x, y
			if amount > 0 {
				tx += c.rng.IntN(2*amount+1) - amount
				ty += c.rng.IntN(2*amount+1) - amount
			}
			if tx < 0 || tx >= grid.Width || ty < 0 || ty >= grid.Height {
				continue
			}
			canvas[ty*grid.Width+tx] = cell{
				glyph: src.Glyph,
				color: GlyphColor(c.theme, src.Index, setLen, level),
				set:   true,
			}
		}
	}
	return canvas
}

// Compose renders grid for a glyph set of setLen glyphs at the given loudness.
// Rows are separated by newlines, with no trailing newline.
func (c *Compositor) Compose(grid glyph.Grid, setLen int, level float64) string {
	if grid.Width <= 0 || grid.Height <= 0 {
		return ""
	}
	canvas := c.layout(grid, setLen, level)

	c.sb.Reset()
	c.sb.Grow(grid.Width * grid.Height * 8)
	state := newANSIState(c.profile)
	for y := 0; y < grid.Height; y++ {
		state.set(&c.sb, background, c.theme.Background)
		row := canvas[y*grid.Width : (y+1)*grid.Width]
		for _, px := range row {
			if !px.set {
				c.sb.WriteByte(' ')
				continue
			}
			state.set(&c.sb, foreground, px.color)
			c.sb.WriteRune(px.glyph)
		}
		state.reset(&c.sb)
		if y < grid.Height-1 {
			c.sb.WriteByte('\n')
		}
	}
	return c.sb.String()
}

// Blank renders an empty background area of w×h cells, shown before the first frame.
func (c *Compositor) Blank(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	c.sb.Reset()
	state := newANSIState(c.profile)
	line := strings.Repeat(" ", w)
	for y := 0; y < h; y++ {
		state.set(&c.sb, background, c.theme.Background)
		c.sb.WriteString(line)
		state.reset(&c.sb)
		if y < h-1 {
			c.sb.WriteByte('\n')
		}
	}
	return c.sb.String()
}
