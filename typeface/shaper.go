package typeface

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/text/unicode/bidi"
)

// ShapedGlyph is a positioned glyph produced by shaping.
type ShapedGlyph struct {
	// GID is the glyph index within the font.
	GID uint16

	// Cluster is the rune index of the first rune of the glyph's cluster.
	Cluster int

	// X, Y is the pen position of the glyph in pixels, offsets applied.
	X, Y float32

	// XAdvance, YAdvance is how far the pen moves after the glyph.
	XAdvance, YAdvance float32
}

// shapingFont lazily parses the go-text representation of a typeface.
// font.Font is read-only and safe for concurrent use.
type shapingFont struct {
	once sync.Once
	font *font.Font
	err  error
}

// shaperPool holds HarfbuzzShaper instances, which are not safe for
// concurrent use.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// Shape converts text into positioned glyphs at typeSize pixels per em using
// HarfBuzz shaping. The run direction follows the first strong character.
// Results are cached per typeface, text and size; the returned slice is
// shared and must not be modified.
func (t *Typeface) Shape(text string, typeSize float32) ([]ShapedGlyph, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}
	if text == "" {
		return nil, nil
	}

	key := RunKey{FontID: t.id, Text: text, Size: typeSize}
	glyphs, err := t.cache.runs.GetOrCreate(key, func() ([]ShapedGlyph, error) {
		f, err := t.goTextFont()
		if err != nil {
			return nil, err
		}
		return shapeRun(f, text, typeSize), nil
	})
	if err != nil {
		return nil, err
	}
	if dropIfClosed(t, t.cache.runs, key) {
		return nil, ErrClosed
	}
	return glyphs, nil
}

// goTextFont returns the parsed go-text font, parsing it on first use.
func (t *Typeface) goTextFont() (*font.Font, error) {
	t.shaping.once.Do(func() {
		face, err := font.ParseTTF(bytes.NewReader(t.data))
		if err != nil {
			t.shaping.err = err
			return
		}
		t.shaping.font = face.Font
	})
	return t.shaping.font, t.shaping.err
}

// shapeRun shapes text as a single run.
func shapeRun(f *font.Font, text string, typeSize float32) []ShapedGlyph {
	runes := []rune(text)
	dir := detectDirection(text)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      font.NewFace(f),
		Size:      floatToFixed(typeSize),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	shaperPool.Put(hb)

	glyphs := make([]ShapedGlyph, len(output.Glyphs))
	var x, y float32
	for i, g := range output.Glyphs {
		glyphs[i] = ShapedGlyph{
			GID:     uint16(g.GlyphID), //nolint:gosec // sfnt glyph ids are 16-bit
			Cluster: g.TextIndex(),
			X:       x + fixedToFloat32(g.XOffset),
			Y:       y + fixedToFloat32(g.YOffset),
		}
		adv := fixedToFloat32(g.Advance)
		if dir.IsVertical() {
			glyphs[i].YAdvance = adv
			y += adv
		} else {
			glyphs[i].XAdvance = adv
			x += adv
		}
	}
	return glyphs
}

// detectDirection returns the direction of the first strong character.
func detectDirection(text string) di.Direction {
	for _, r := range text {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.R, bidi.AL:
			return di.DirectionRTL
		case bidi.L:
			return di.DirectionLTR
		}
	}
	return di.DirectionLTR
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
