package jsondata

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with jsondata-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithName adds a file name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// LogSave logs the write of a single file.
func (l *Logger) LogSave(ctx context.Context, name string, kind Kind, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"kind", kind.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "save completed",
			"name", name,
			"kind", kind.String(),
			"bytes", bytes,
		)
	}
}

// LogRead logs the read of a single file.
func (l *Logger) LogRead(ctx context.Context, name string, format Format, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed",
			"name", name,
			"format", format.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "read completed",
			"name", name,
			"format", format.String(),
			"bytes", bytes,
		)
	}
}

// LogMap logs a map saved to or read from sibling files.
func (l *Logger) LogMap(ctx context.Context, name string, entries int) {
	l.InfoContext(ctx, "map entries processed",
		"name", name,
		"entries", entries,
	)
}
