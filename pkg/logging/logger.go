// Package logging provides structured logging for the collision engine.
// It wraps Go's standard slog package so every subsystem logs the same way,
// tags entries with the simulation tick carried in the context, and can
// suppress repeated warnings from the same call site.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Logger wraps slog.Logger with tick-aware helpers.
type Logger struct {
	*slog.Logger
	once *sync.Map
}

// NewLogger creates a new Logger instance with JSON output and configurable level.
// The log level can be controlled via the COLLIDE_LOG_LEVEL environment variable.
// Valid levels: DEBUG, INFO, WARN, ERROR. Defaults to INFO.
func NewLogger() *Logger {
	return New(os.Stdout, getLogLevelFromEnv())
}

// New creates a Logger writing JSON entries at or above level to w.
func New(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler), once: &sync.Map{}}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return New(io.Discard, slog.LevelError)
}

// LogWithContext logs a message, adding the simulation tick when the context
// carries one.
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if tick, ok := GetTick(ctx); ok {
		args = append(args, "tick", tick)
	}
	l.Log(ctx, level, msg, args...)
}

// Info logs an informational message with context.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message with context.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with context and proper error formatting.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

// Debug logs a debug message with context.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

// WarnOnce logs a warning the first time it is called for a given site and
// reports whether it logged.
func (l *Logger) WarnOnce(ctx context.Context, site string, msg string, args ...any) bool {
	if _, loaded := l.once.LoadOrStore(site, struct{}{}); loaded {
		return false
	}
	l.Warn(ctx, msg, append(args, "site", site)...)
	return true
}

// CallSite returns "file:line" of the caller skip frames above the caller of
// CallSite.
func CallSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// tickKey is the context key for the simulation tick
type tickKey struct{}

// WithTick stores the simulation tick in the context.
func WithTick(ctx context.Context, tick uint64) context.Context {
	return context.WithValue(ctx, tickKey{}, tick)
}

// GetTick extracts the simulation tick from the context.
func GetTick(ctx context.Context) (uint64, bool) {
	tick, ok := ctx.Value(tickKey{}).(uint64)
	return tick, ok
}

// getLogLevelFromEnv determines the log level from environment variables.
func getLogLevelFromEnv() slog.Level {
	levelStr := strings.ToUpper(os.Getenv("COLLIDE_LOG_LEVEL"))
	switch levelStr {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WrapError wraps an error with additional context information.
// This preserves the original error while adding descriptive context.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}
