// Command segdemo loads a font, shapes a line of text and generates the
// glyph paths through a small shared cache, then prints cache statistics.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/segcache"
	"github.com/gogpu/segcache/typeface"
)

func main() {
	var (
		fontPath = flag.String("font", "", "font file (default: embedded Go Regular)")
		capacity = flag.Int("capacity", 256, "shared cache capacity in weight units")
		text     = flag.String("text", "The quick brown fox jumps over the lazy dog", "text to shape")
		size     = flag.Float64("size", 16, "type size in pixels per em")
		passes   = flag.Int("passes", 3, "how many times to render the text")
		verbose  = flag.Bool("v", false, "log cache evictions")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	segcache.SetLogger(logger)

	cache, err := typeface.NewGlyphCache(typeface.CacheConfig{Capacity: *capacity, Name: "demo"})
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}

	tf, err := loadTypeface(*fontPath, cache)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}
	defer tf.Close()

	logger.Info("loaded typeface", "name", tf.FullName(), "glyphs", tf.GlyphCount(), "unitsPerEm", tf.UnitsPerEm())

	for pass := 0; pass < *passes; pass++ {
		segments, err := render(tf, *text, float32(*size))
		if err != nil {
			log.Fatalf("Failed to render: %v", err)
		}
		stats := cache.Stats()
		logger.Info("rendered",
			"pass", pass+1,
			"pathSegments", segments,
			"entries", stats.Len,
			"size", stats.Size,
			"capacity", stats.Capacity,
			"hitRate", stats.HitRate,
			"evictions", stats.Evictions,
		)
	}
}

func loadTypeface(path string, cache *typeface.GlyphCache) (*typeface.Typeface, error) {
	if path == "" {
		return typeface.New(goregular.TTF, typeface.WithCache(cache))
	}
	return typeface.NewFromFile(path, typeface.WithCache(cache))
}

// render shapes text and fetches the path of every glyph, returning the
// total number of path segments.
func render(tf *typeface.Typeface, text string, size float32) (int, error) {
	glyphs, err := tf.Shape(text, size)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, g := range glyphs {
		path, err := tf.GlyphPath(g.GID, size)
		if err != nil {
			return 0, err
		}
		total += path.Len()
	}
	return total, nil
}
