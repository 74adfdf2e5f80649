package glyph

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestMapIntensityEndpointsAndMonotonic(t *testing.T) {
	for n := 2; n <= 70; n++ {
		if got := MapIntensity(0, n); got != 0 {
			t.Fatalf("MapIntensity(0, %d) = %d, want 0", n, got)
		}
		if got := MapIntensity(255, n); got != n-1 {
			t.Fatalf("MapIntensity(255, %d) = %d, want %d", n, got, n-1)
		}
		prev := 0
		for v := 0; v <= 255; v++ {
			got := MapIntensity(uint8(v), n)
			if got < prev {
				t.Fatalf("MapIntensity not monotonic for n=%d at v=%d: %d < %d", n, v, got, prev)
			}
			if got < 0 || got >= n {
				t.Fatalf("MapIntensity(%d, %d) = %d out of range", v, n, got)
			}
			prev = got
		}
	}
}

func TestMapIntensitySingleGlyph(t *testing.T) {
	for _, v := range []uint8{0, 1, 128, 255} {
		if got := MapIntensity(v, 1); got != 0 {
			t.Fatalf("MapIntensity(%d, 1) = %d, want 0", v, got)
		}
	}
}

func TestMapFrameScenario(t *testing.T) {
	set := NewSet("scenario", "@# .")
	frame := image.NewGray(image.Rect(0, 0, 3, 1))
	frame.Pix = []uint8{0, 85, 255}

	grid := MapFrame(frame, set)
	if grid.String() != "@#." {
		t.Fatalf("expected %q, got %q", "@#.", grid.String())
	}
	if got := grid.At(1, 0).Index; got != 1 {
		t.Fatalf("expected index 1 for intensity 85, got %d", got)
	}
}

func TestMapFrameSingleGlyphSet(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 2, 2))
	frame.Pix = []uint8{0, 90, 180, 255}

	grid := MapFrame(frame, NewSet("one", "#"))
	if grid.String() != "##\n##" {
		t.Fatalf("expected all '#', got %q", grid.String())
	}
}

func TestMapIsDeterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: uint8(x ^ y), A: 255})
		}
	}
	set := DefaultPalette()[0]

	a := Map(img, 20, 10, set)
	b := Map(img, 20, 10, set)
	if a.Width != 20 || a.Height != 10 {
		t.Fatalf("expected 20x10 grid, got %dx%d", a.Width, a.Height)
	}
	if a.String() != b.String() {
		t.Fatal("expected identical grids for identical input")
	}
}

func TestGrayscaleUniformColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 255, 255, 255
	}

	gray := Grayscale(img, 4, 2)
	for i, v := range gray.Pix {
		if v != 255 {
			t.Fatalf("pixel %d = %d, want 255", i, v)
		}
	}
}

func TestPaletteValidate(t *testing.T) {
	if err := DefaultPalette().Validate(); err != nil {
		t.Fatalf("default palette invalid: %v", err)
	}
	if err := (Palette{}).Validate(); err == nil {
		t.Fatal("expected error for empty palette")
	}
	err := PaletteFromStrings([]string{"ab", ""}).Validate()
	if !errors.Is(err, ErrEmptySet) {
		t.Fatalf("expected ErrEmptySet, got %v", err)
	}
	err = PaletteFromStrings([]string{"ab", "@"}).Validate()
	if !errors.Is(err, ErrShortSet) {
		t.Fatalf("expected ErrShortSet, got %v", err)
	}
}

func TestDefaultPaletteSetsAreOrderedUnique(t *testing.T) {
	for _, s := range DefaultPalette() {
		if s.Len() < 2 {
			t.Fatalf("set %q has %d glyphs", s.Name, s.Len())
		}
		seen := make(map[rune]bool)
		for i := 0; i < s.Len(); i++ {
			if seen[s.At(i)] {
				t.Fatalf("set %q repeats glyph %q", s.Name, s.At(i))
			}
			seen[s.At(i)] = true
		}
	}
}

func TestPaletteNextWraps(t *testing.T) {
	p := DefaultPalette()
	if got := p.Next(len(p) - 1); got != 0 {
		t.Fatalf("expected wrap to 0, got %d", got)
	}
	if got := p.Next(0); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}
