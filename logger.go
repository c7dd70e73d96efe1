package segcache

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip attribute formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for segcache and its sub-packages.
// By default, segcache produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore silence.
// Caches created with WithLogger keep their own logger.
//
// Log levels used by segcache:
//   - [slog.LevelDebug]: evictions, clears, segment registration
//   - [slog.LevelInfo]: lifecycle events (typeface registration)
//   - [slog.LevelWarn]: non-fatal issues (missing optional font tables)
//
// Example:
//
//	segcache.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger.
// Sub-packages call this to share the same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
