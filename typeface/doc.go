// Package typeface loads OpenType/TrueType fonts and caches the data derived
// from them in a shared segcache budget.
//
// A Typeface answers glyph queries (glyph ids, advances, outlines, raw sfnt
// tables, shaped runs). Derived values are kept in a GlyphCache: one
// segcache.Cache with one segment per kind of value, so glyph outlines,
// advances, table bytes and shaped runs compete for a single memory budget.
//
//	tf, err := typeface.New(goregular.TTF)
//	if err != nil {
//	    return err
//	}
//	defer tf.Close()
//
//	path, err := tf.GlyphPath(tf.GlyphID('g'), 16)
//
// All typefaces share DefaultGlyphCache unless WithCache is given.
//
// Manager is a registry of typefaces addressable by tag, full name and
// family name.
package typeface
