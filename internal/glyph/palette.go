package glyph

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrEmptySet is returned when a glyph set has no glyphs.
var ErrEmptySet = errors.New("glyph set is empty")

// ErrShortSet is returned when a glyph set has a single glyph.
var ErrShortSet = errors.New("glyph set needs at least 2 glyphs")

// Set is an ordered run of glyphs from darkest to lightest.
type Set struct {
	Name   string
	glyphs []rune
}

// NewSet builds a set from a darkest→lightest string.
func NewSet(name, glyphs string) Set {
	return Set{Name: name, glyphs: []rune(glyphs)}
}

// Len returns the number of glyphs in the set.
func (s Set) Len() int { return len(s.glyphs) }

// At returns the glyph at index i.
func (s Set) At(i int) rune { return s.glyphs[i] }

// String returns the glyphs as a string.
func (s Set) String() string { return string(s.glyphs) }

// Validate reports whether the set can be configured for rendering.
func (s Set) Validate() error {
	if len(s.glyphs) == 0 {
		return fmt.Errorf("%q: %w", s.Name, ErrEmptySet)
	}
	if len(s.glyphs) < 2 {
		return fmt.Errorf("%q: %w", s.Name, ErrShortSet)
	}
	for i, g := range s.glyphs {
		if g == utf8.RuneError {
			return fmt.Errorf("%q: invalid glyph at index %d", s.Name, i)
		}
	}
	return nil
}

// Palette is the fixed, ordered list of glyph sets the renderer cycles through.
type Palette []Set

// DefaultPalette returns the built-in glyph sets.
func DefaultPalette() Palette {
	return Palette{
		NewSet("standard", "@%#*+=-:. "),
		NewSet("detailed", "$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'. "),
		NewSet("blocks", "░▒▓█▚▞▙▟▀▄▐▌▝▘▗▖"),
		NewSet("geometric", "◈◇◆◉●◍◎◌○◯◐◑◒◓◔◕◖◗"),
		NewSet("suits", "♠♣♥♦♤♧♡♢♩♪♫♬♭♮♯"),
		NewSet("binary", "01"),
	}
}

// PaletteFromStrings builds a palette from user-supplied glyph strings.
func PaletteFromStrings(sets []string) Palette {
	p := make(Palette, len(sets))
	for i, s := range sets {
		p[i] = NewSet(fmt.Sprintf("custom %d", i+1), s)
	}
	return p
}

// Validate checks every set. An empty palette is rejected.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return errors.New("palette has no glyph sets")
	}
	for _, s := range p {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Next returns the index following i, wrapping around.
func (p Palette) Next(i int) int {
	if len(p) == 0 {
		return 0
	}
	return (i + 1) % len(p)
}
