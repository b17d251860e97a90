package vfsio

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vfsio-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithName adds a name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// LogOpen logs an open operation.
func (l *Logger) LogOpen(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "open completed",
			"name", name,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"name", name,
		)
	}
}

// LogAccess logs an access probe.
func (l *Logger) LogAccess(ctx context.Context, name string, mode AccessMode, result int) {
	l.DebugContext(ctx, "access probed",
		"name", name,
		"mode", int(mode),
		"result", result,
	)
}

// LogFlush logs a stream flush.
func (l *Logger) LogFlush(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"name", name,
		)
	}
}

// LogClose logs a stream close.
func (l *Logger) LogClose(ctx context.Context, name string, read, written int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"name", name,
			"bytes_read", read,
			"bytes_written", written,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "stream closed",
			"name", name,
			"bytes_read", read,
			"bytes_written", written,
		)
	}
}
