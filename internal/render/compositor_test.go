package render

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/olivier-w/glyphcam/internal/glyph"
)

func testGrid(w, h int, glyphs string) glyph.Grid {
	runes := []rune(glyphs)
	g := glyph.Grid{Width: w, Height: h, Cells: make([]glyph.Cell, w*h)}
	for i := range g.Cells {
		g.Cells[i] = glyph.Cell{Glyph: runes[i%len(runes)], Index: i % len(runes)}
	}
	return g
}

func TestGlyphColorEndpoints(t *testing.T) {
	theme := DefaultTheme

	// Index 0 at full loudness is the bright colour.
	if got := GlyphColor(theme, 0, 10, 1); got != theme.Bright {
		t.Fatalf("GlyphColor(0, loud) = %+v, want %+v", got, theme.Bright)
	}

	// Silence scales brightness to 70%: dim + 0.7*(bright-dim), truncated.
	want := RGB{R: 17, G: 223, B: 51}
	got := GlyphColor(theme, 0, 10, 0)
	if absDiff(got.R, want.R) > 1 || absDiff(got.G, want.G) > 1 || absDiff(got.B, want.B) > 1 {
		t.Fatalf("GlyphColor(0, silent) = %+v, want about %+v", got, want)
	}

	// Out of range levels are clamped before scaling.
	if got := GlyphColor(theme, 5, 10, 3); got != GlyphColor(theme, 5, 10, 1) {
		t.Fatalf("GlyphColor(5, 3) = %+v, want the level 1 colour", got)
	}
	if got := GlyphColor(theme, 5, 10, -2); got != GlyphColor(theme, 5, 10, 0) {
		t.Fatalf("GlyphColor(5, -2) = %+v, want the level 0 colour", got)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestGlyphColorDimsLaterGlyphs(t *testing.T) {
	theme := DefaultTheme
	prev := GlyphColor(theme, 0, 4, 0.5)
	for i := 1; i < 4; i++ {
		got := GlyphColor(theme, i, 4, 0.5)
		if got.G >= prev.G {
			t.Fatalf("glyph %d green %d not dimmer than %d", i, got.G, prev.G)
		}
		prev = got
	}
}

func TestGlyphColorStaysInRange(t *testing.T) {
	theme := DefaultTheme
	for _, level := range []float64{-1, 0, 0.3, 1, 5} {
		for i := 0; i < 10; i++ {
			c := GlyphColor(theme, i, 10, level)
			if c.G < theme.Dim.G || c.G > theme.Bright.G {
				t.Fatalf("level %v idx %d green %d out of [%d,%d]", level, i, c.G, theme.Dim.G, theme.Bright.G)
			}
		}
	}
}

func TestJitterAmount(t *testing.T) {
	tests := []struct {
		level float64
		want  int
	}{
		{0, 0},
		{0.5, 0},
		{0.51, 1},
		{0.99, 1},
		{1, 2},
	}
	for _, tt := range tests {
		if got := JitterAmount(tt.level); got != tt.want {
			t.Fatalf("JitterAmount(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLayoutWithoutJitterKeepsPositions(t *testing.T) {
	c := NewCompositor(DefaultTheme, rand.New(rand.NewPCG(1, 2)))
	grid := testGrid(5, 3, "@#.")

	canvas := c.layout(grid, 3, 0.5)
	for i, px := range canvas {
		if !px.set || px.glyph != grid.Cells[i].Glyph {
			t.Fatalf("cell %d = %+v, want glyph %q", i, px, grid.Cells[i].Glyph)
		}
	}
}

func TestLayoutJitterStaysWithinBounds(t *testing.T) {
	c := NewCompositor(DefaultTheme, rand.New(rand.NewPCG(7, 9)))
	grid := testGrid(6, 4, "ab")

	canvas := c.layout(grid, 2, 1)
	if len(canvas) != 24 {
		t.Fatalf("canvas size = %d", len(canvas))
	}
	moved := false
	for i, px := range canvas {
		if px.set && px.glyph != grid.Cells[i].Glyph {
			moved = true
		}
	}
	if !moved {
		t.Fatal("expected loud jitter to displace at least one glyph")
	}
}

func TestComposeDeterministicWithSeed(t *testing.T) {
	grid := testGrid(8, 4, "@%#*")
	a := NewCompositor(DefaultTheme, rand.New(rand.NewPCG(3, 4)))
	b := NewCompositor(DefaultTheme, rand.New(rand.NewPCG(3, 4)))
	if a.Compose(grid, 4, 0.9) != b.Compose(grid, 4, 0.9) {
		t.Fatal("same seed produced different output")
	}
}

func TestComposePlainText(t *testing.T) {
	c := NewCompositor(DefaultTheme, nil)
	c.profile = colorNone
	grid := testGrid(3, 2, "@#.")

	got := c.Compose(grid, 3, 0)
	if got != "@#.\n@#." {
		t.Fatalf("Compose() = %q", got)
	}
}

func TestComposeTrueColorEscapes(t *testing.T) {
	theme := DefaultTheme
	theme.Dim = theme.Bright
	c := NewCompositor(theme, nil)
	c.profile = colorTrueColor
	grid := testGrid(2, 1, "@")

	got := c.Compose(grid, 2, 0)
	if !strings.HasPrefix(got, "\x1b[48;2;5;30;5m") {
		t.Fatalf("expected background escape first, got %q", got)
	}
	if !strings.Contains(got, "\x1b[38;2;20;255;60m@") {
		t.Fatalf("expected bright foreground, got %q", got)
	}
	// Identical adjacent colours are written once.
	if strings.Count(got, "\x1b[38;2;20;255;60m") != 1 {
		t.Fatalf("expected one foreground escape, got %q", got)
	}
	if !strings.HasSuffix(got, "\x1b[0m") {
		t.Fatalf("expected reset at end of line, got %q", got)
	}
}

func TestComposeEmptyGrid(t *testing.T) {
	c := NewCompositor(DefaultTheme, nil)
	if got := c.Compose(glyph.Grid{}, 3, 0); got != "" {
		t.Fatalf("Compose(empty) = %q", got)
	}
}

func TestBlank(t *testing.T) {
	c := NewCompositor(DefaultTheme, nil)
	c.profile = colorNone
	if got := c.Blank(3, 2); got != "   \n   " {
		t.Fatalf("Blank() = %q", got)
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#14FF3C")
	if err != nil {
		t.Fatalf("ParseHex() error = %v", err)
	}
	if c != (RGB{R: 20, G: 255, B: 60}) {
		t.Fatalf("ParseHex() = %+v", c)
	}
	if c.Hex() != "#14FF3C" {
		t.Fatalf("Hex() = %q", c.Hex())
	}
	for _, bad := range []string{"", "14FF3C", "#14FF3", "#GGGGGG"} {
		if _, err := ParseHex(bad); err == nil {
			t.Fatalf("ParseHex(%q) expected error", bad)
		}
	}
}

func TestColorSequenceProfiles(t *testing.T) {
	c := RGB{R: 255, G: 0, B: 0}
	if got := colorSequence(colorANSI256, foreground, c); got != "\x1b[38;5;196m" {
		t.Fatalf("ansi256 fg = %q", got)
	}
	if got := colorSequence(colorANSI16, background, c); got != "\x1b[41m" {
		t.Fatalf("ansi16 bg = %q", got)
	}
	if got := colorSequence(colorNone, foreground, c); got != "" {
		t.Fatalf("none = %q", got)
	}
}
