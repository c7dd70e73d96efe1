package typeface

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/segcache"
)

// nextFontID hands out unique typeface ids used in cache keys.
var nextFontID atomic.Uint64

// Typeface is a loaded font file together with its design metrics.
// Values derived from it (paths, advances, tables, shaped runs) are cached
// in its GlyphCache.
//
// Typeface is safe for concurrent use.
type Typeface struct {
	id    uint64
	data  []byte
	font  *sfnt.Font
	cache *GlyphCache

	loaderMu sync.Mutex
	loader   *opentype.Loader

	shaping shapingFont

	familyName string
	styleName  string
	fullName   string
	metrics    designMetrics

	closed atomic.Bool
}

// designMetrics holds font-wide values in font units.
type designMetrics struct {
	unitsPerEm         int
	ascent             int
	descent            int
	leading            int
	xMin, yMin         int
	xMax, yMax         int
	underlinePosition  int
	underlineThickness int
}

// New creates a Typeface from font data (TTF or OTF).
// The data slice is copied internally and can be reused after this call.
func New(data []byte, opts ...Option) (*Typeface, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	config := defaultTypefaceConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.cache == nil {
		config.cache = DefaultGlyphCache()
	}

	dataCopy := bytes.Clone(data)

	f, err := sfnt.Parse(dataCopy)
	if err != nil {
		return nil, fmt.Errorf("typeface: failed to parse font: %w", err)
	}
	loader, err := opentype.NewLoader(bytes.NewReader(dataCopy))
	if err != nil {
		return nil, fmt.Errorf("typeface: failed to load font tables: %w", err)
	}

	t := &Typeface{
		id:     nextFontID.Add(1),
		data:   dataCopy,
		font:   f,
		loader: loader,
		cache:  config.cache,
	}
	t.familyName = t.name(sfnt.NameIDFamily)
	t.styleName = t.name(sfnt.NameIDSubfamily)
	t.fullName = t.name(sfnt.NameIDFull)

	if err := t.loadMetrics(); err != nil {
		t.cache.purge(t.id)
		return nil, err
	}

	return t, nil
}

// NewFromFile loads a Typeface from a font file path.
func NewFromFile(path string, opts ...Option) (*Typeface, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("typeface: failed to read font file: %w", err)
	}

	return New(data, opts...)
}

// ID returns the unique id of the typeface within this process.
func (t *Typeface) ID() uint64 {
	return t.id
}

// FamilyName returns the font family name, e.g. "Go".
func (t *Typeface) FamilyName() string {
	return t.familyName
}

// StyleName returns the subfamily name, e.g. "Regular".
func (t *Typeface) StyleName() string {
	return t.styleName
}

// FullName returns the full font name, e.g. "Go Regular".
func (t *Typeface) FullName() string {
	return t.fullName
}

// UnitsPerEm returns the number of font units per em square.
func (t *Typeface) UnitsPerEm() int {
	return t.metrics.unitsPerEm
}

// Ascent returns the typographic ascender in font units.
func (t *Typeface) Ascent() int {
	return t.metrics.ascent
}

// Descent returns the typographic descender in font units, as a positive
// distance below the baseline.
func (t *Typeface) Descent() int {
	return t.metrics.descent
}

// Leading returns the typographic line gap in font units.
func (t *Typeface) Leading() int {
	return t.metrics.leading
}

// BoundingBox returns the font bounding box in font units. The box is large
// enough to contain any glyph of the font.
func (t *Typeface) BoundingBox() (xMin, yMin, xMax, yMax int) {
	m := t.metrics
	return m.xMin, m.yMin, m.xMax, m.yMax
}

// UnderlinePosition returns the underline position in font units.
func (t *Typeface) UnderlinePosition() int {
	return t.metrics.underlinePosition
}

// UnderlineThickness returns the underline thickness in font units.
func (t *Typeface) UnderlineThickness() int {
	return t.metrics.underlineThickness
}

// GlyphCount returns the number of glyphs in the font.
func (t *Typeface) GlyphCount() int {
	return t.font.NumGlyphs()
}

// GlyphID returns the glyph id for a code point, or 0 (the missing glyph).
func (t *Typeface) GlyphID(r rune) uint16 {
	var buf sfnt.Buffer
	idx, err := t.font.GlyphIndex(&buf, r)
	if err != nil {
		return 0
	}
	return uint16(idx)
}

// GlyphAdvance returns the horizontal advance of a glyph at typeSize pixels
// per em. It returns 0 for unknown glyphs and closed typefaces.
func (t *Typeface) GlyphAdvance(gid uint16, typeSize float32) float32 {
	if t.closed.Load() {
		return 0
	}

	key := GlyphKey{FontID: t.id, GID: gid, Size: typeSize}
	adv, err := t.cache.advances.GetOrCreate(key, func() (float32, error) {
		var buf sfnt.Buffer
		a, err := t.font.GlyphAdvance(&buf, sfnt.GlyphIndex(gid), floatToFixed(typeSize), font.HintingNone)
		if err != nil {
			return 0, err
		}
		return fixedToFloat32(a), nil
	})
	if err != nil || dropIfClosed(t, t.cache.advances, key) {
		return 0
	}
	return adv
}

// GlyphPath returns the outline of a glyph scaled to typeSize pixels per em.
// The returned path is shared with the cache and must not be modified.
func (t *Typeface) GlyphPath(gid uint16, typeSize float32) (*GlyphPath, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}

	key := GlyphKey{FontID: t.id, GID: gid, Size: typeSize}
	path, err := t.cache.paths.GetOrCreate(key, func() (*GlyphPath, error) {
		var buf sfnt.Buffer
		segs, err := t.font.LoadGlyph(&buf, sfnt.GlyphIndex(gid), floatToFixed(typeSize), nil)
		if err != nil {
			return nil, fmt.Errorf("typeface: glyph %d: %w", gid, err)
		}
		return newGlyphPath(gid, typeSize, segs), nil
	})
	if err != nil {
		return nil, err
	}
	if dropIfClosed(t, t.cache.paths, key) {
		return nil, ErrClosed
	}
	return path, nil
}

// TableData returns the raw data of the table with the given tag.
// The returned slice is shared with the cache and must not be modified.
func (t *Typeface) TableData(tag Tag) ([]byte, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}

	key := TableKey{FontID: t.id, Tag: tag}
	data, err := t.cache.tables.GetOrCreate(key, func() ([]byte, error) {
		t.loaderMu.Lock()
		data, err := t.loader.RawTable(opentype.Tag(tag))
		t.loaderMu.Unlock()
		if err != nil {
			return nil, &TableError{Tag: tag, Err: fmt.Errorf("%w: %v", ErrTableNotFound, err)}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if dropIfClosed(t, t.cache.tables, key) {
		return nil, ErrClosed
	}
	return data, nil
}

// Head returns the 'head' table of the font.
func (t *Typeface) Head() (*HeadTable, error) {
	data, err := t.TableData(TagHead)
	if err != nil {
		return nil, err
	}
	return NewHeadTable(data)
}

// Hhea returns the 'hhea' table of the font.
func (t *Typeface) Hhea() (*HheaTable, error) {
	data, err := t.TableData(TagHhea)
	if err != nil {
		return nil, err
	}
	return NewHheaTable(data)
}

// Post returns the header of the 'post' table of the font.
func (t *Typeface) Post() (*PostTable, error) {
	data, err := t.TableData(TagPost)
	if err != nil {
		return nil, err
	}
	return NewPostTable(data)
}

// Cache returns the glyph cache this typeface stores derived data in.
func (t *Typeface) Cache() *GlyphCache {
	return t.cache
}

// Close drops every cached value derived from the typeface. Further queries
// return ErrClosed or zero values. Close is idempotent.
func (t *Typeface) Close() error {
	if t.closed.Swap(true) {
		return nil
	}

	n := t.cache.purge(t.id)
	segcache.Logger().Debug("typeface: closed", "name", t.fullName, "purged", n)
	return nil
}

// dropIfClosed removes key again when t was closed while the value was
// being cached. Close marks the typeface closed before purging, so an
// insertion the purge missed is always seen here.
func dropIfClosed[K comparable, V any](t *Typeface, s *segcache.Segment[K, V], key K) bool {
	if !t.closed.Load() {
		return false
	}
	s.Remove(key)
	return true
}

// String returns a short description of the typeface.
func (t *Typeface) String() string {
	return fmt.Sprintf("Typeface{name=%q, unitsPerEm=%d, ascent=%d, descent=%d, leading=%d, glyphCount=%d}",
		t.fullName, t.metrics.unitsPerEm, t.metrics.ascent, t.metrics.descent, t.metrics.leading, t.GlyphCount())
}

// name reads a name table entry, returning "" if it is absent.
func (t *Typeface) name(id sfnt.NameID) string {
	var buf sfnt.Buffer
	s, err := t.font.Name(&buf, id)
	if err != nil {
		return ""
	}
	return s
}

// loadMetrics reads the design metrics from the head, hhea and post tables.
// head and hhea are required; a missing post table only disables underline
// metrics.
func (t *Typeface) loadMetrics() error {
	head, err := t.Head()
	if err != nil {
		return err
	}
	hhea, err := t.Hhea()
	if err != nil {
		return err
	}

	t.metrics = designMetrics{
		unitsPerEm: int(head.UnitsPerEm()),
		ascent:     int(hhea.Ascender()),
		descent:    -int(hhea.Descender()),
		leading:    int(hhea.LineGap()),
		xMin:       int(head.XMin()),
		yMin:       int(head.YMin()),
		xMax:       int(head.XMax()),
		yMax:       int(head.YMax()),
	}

	post, err := t.Post()
	switch {
	case err == nil:
		t.metrics.underlinePosition = int(post.UnderlinePosition())
		t.metrics.underlineThickness = int(post.UnderlineThickness())
	case errors.Is(err, ErrTableNotFound), errors.Is(err, ErrTableTooShort), errors.Is(err, ErrTableMalformed):
		segcache.Logger().Warn("typeface: no usable post table, underline metrics unavailable",
			"name", t.fullName, "err", err)
	default:
		return err
	}
	return nil
}
