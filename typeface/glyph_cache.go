package typeface

import (
	"fmt"
	"sync"

	"github.com/gogpu/segcache"
)

// CacheConfig holds configuration for GlyphCache.
type CacheConfig struct {
	// Capacity is the shared budget of all segments, in weight units.
	// A glyph path weighs its segment count plus one, a table one unit per
	// started KiB, a shaped run its glyph count plus one, an advance one.
	// Default: 8192
	Capacity int

	// Name labels the cache in log records.
	Name string
}

// DefaultCacheConfig returns the default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Capacity: 8192,
		Name:     "glyphs",
	}
}

// GlyphKey identifies a per-glyph value at a type size.
type GlyphKey struct {
	// FontID is the unique id of the typeface.
	FontID uint64

	// GID is the glyph index within the font.
	GID uint16

	// Size is the type size in pixels per em.
	Size float32
}

// TableKey identifies the raw data of one sfnt table.
type TableKey struct {
	FontID uint64
	Tag    Tag
}

// RunKey identifies a shaped run of text.
type RunKey struct {
	FontID uint64
	Text   string
	Size   float32
}

// GlyphCache keeps the data derived from typefaces. Glyph paths, glyph
// advances, table data and shaped runs live in separate segments of one
// segcache.Cache and therefore compete for one capacity.
//
// GlyphCache is safe for concurrent use.
type GlyphCache struct {
	cache    *segcache.Cache
	paths    *segcache.Segment[GlyphKey, *GlyphPath]
	advances *segcache.Segment[GlyphKey, float32]
	tables   *segcache.Segment[TableKey, []byte]
	runs     *segcache.Segment[RunKey, []ShapedGlyph]
}

// NewGlyphCache creates a glyph cache with the given configuration.
// A non-positive Capacity falls back to the default.
func NewGlyphCache(config CacheConfig) (*GlyphCache, error) {
	if config.Capacity <= 0 {
		config.Capacity = DefaultCacheConfig().Capacity
	}

	var opts []segcache.Option
	if config.Name != "" {
		opts = append(opts, segcache.WithName(config.Name))
	}
	c, err := segcache.New(config.Capacity, opts...)
	if err != nil {
		return nil, fmt.Errorf("typeface: glyph cache: %w", err)
	}

	return &GlyphCache{
		cache:    c,
		paths:    segcache.NewSegment[GlyphKey, *GlyphPath](c, pathWeight),
		advances: segcache.NewSegment[GlyphKey, float32](c, nil),
		tables:   segcache.NewSegment[TableKey, []byte](c, tableWeight),
		runs:     segcache.NewSegment[RunKey, []ShapedGlyph](c, runWeight),
	}, nil
}

var defaultGlyphCache = sync.OnceValue(func() *GlyphCache {
	g, err := NewGlyphCache(DefaultCacheConfig())
	if err != nil {
		panic(err) // default capacity is positive
	}
	return g
})

// DefaultGlyphCache returns the process-wide cache used by typefaces created
// without WithCache.
func DefaultGlyphCache() *GlyphCache {
	return defaultGlyphCache()
}

// Cache returns the underlying shared cache.
func (g *GlyphCache) Cache() *segcache.Cache {
	return g.cache
}

// Stats returns statistics of the underlying cache.
func (g *GlyphCache) Stats() segcache.Stats {
	return g.cache.Stats()
}

// Clear drops every cached value of every typeface.
func (g *GlyphCache) Clear() {
	g.cache.Clear()
}

// purge drops every value derived from the typeface with the given id.
func (g *GlyphCache) purge(fontID uint64) int {
	n := g.paths.RemoveFunc(func(k GlyphKey) bool { return k.FontID == fontID })
	n += g.advances.RemoveFunc(func(k GlyphKey) bool { return k.FontID == fontID })
	n += g.tables.RemoveFunc(func(k TableKey) bool { return k.FontID == fontID })
	n += g.runs.RemoveFunc(func(k RunKey) bool { return k.FontID == fontID })
	return n
}

func pathWeight(_ GlyphKey, p *GlyphPath) int {
	return p.Len() + 1
}

func tableWeight(_ TableKey, data []byte) int {
	return len(data)/1024 + 1
}

func runWeight(_ RunKey, glyphs []ShapedGlyph) int {
	return len(glyphs) + 1
}
