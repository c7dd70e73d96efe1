package segcache

import "log/slog"

// Option configures a Cache during creation.
//
// Example:
//
//	c, err := segcache.New(1024, segcache.WithLogger(logger))
type Option func(*cacheOptions)

// cacheOptions holds optional configuration for Cache creation.
type cacheOptions struct {
	logger *slog.Logger
	name   string
}

// defaultOptions returns the default cache options.
func defaultOptions() cacheOptions {
	return cacheOptions{
		logger: nil, // falls back to Logger() at log time
	}
}

// WithLogger sets a logger used by this cache instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *cacheOptions) {
		o.logger = l
	}
}

// WithName labels the cache in log records. Useful when several caches
// with independent budgets log to the same handler.
func WithName(name string) Option {
	return func(o *cacheOptions) {
		o.name = name
	}
}
