package vdb

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vdb-specific helpers so log output uses
// consistent field names across the engine and its callers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is nil, a
// default text handler to stderr is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger with human-readable text output.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger with JSON output.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithCollection tags the logger with a collection name.
func (l *Logger) WithCollection(name string) *Logger {
	return &Logger{Logger: l.Logger.With("collection", name)}
}

// LogAppend logs one append operation.
func (l *Logger) LogAppend(ctx context.Context, id string, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "append failed", "id", id, "dimension", dimension, "error", err)
	} else {
		l.DebugContext(ctx, "append completed", "id", id, "dimension", dimension)
	}
}

// LogRecovery logs a WAL recovery on open.
func (l *Logger) LogRecovery(ctx context.Context, discardedBytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "WAL recovery failed", "discarded_bytes", discardedBytes, "error", err)
	} else if discardedBytes > 0 {
		l.WarnContext(ctx, "WAL recovery discarded pending record", "discarded_bytes", discardedBytes)
	} else {
		l.DebugContext(ctx, "WAL recovery completed", "discarded_bytes", int64(0))
	}
}

// LogSnapshot logs a snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, target string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed", "target", target, "error", err)
	} else {
		l.InfoContext(ctx, "snapshot saved", "target", target)
	}
}
