package typeface

// Option configures a Typeface during creation.
type Option func(*typefaceConfig)

// typefaceConfig holds optional configuration for Typeface creation.
type typefaceConfig struct {
	cache *GlyphCache
}

// defaultTypefaceConfig returns the default typeface configuration.
func defaultTypefaceConfig() typefaceConfig {
	return typefaceConfig{
		cache: nil, // DefaultGlyphCache() is used if nil
	}
}

// WithCache makes the typeface store its derived data in c instead of the
// shared DefaultGlyphCache. Use it to give a group of typefaces its own
// memory budget.
func WithCache(c *GlyphCache) Option {
	return func(o *typefaceConfig) {
		o.cache = c
	}
}
