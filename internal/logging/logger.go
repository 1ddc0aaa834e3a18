// Package logging wraps log/slog with the session-scoped attributes the
// coordinator and its adapters attach to every entry.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// FileName is the log file created inside the configured log directory.
const FileName = "onboard.log"

// Logger is safe for concurrent use. Child loggers share the parent's file.
type Logger struct {
	logger *slog.Logger
	file   *fileHandle
}

type fileHandle struct {
	mu sync.Mutex
	f  *os.File
}

// NewLogger writes JSON lines to {dir}/onboard.log, or to stderr when dir is empty.
func NewLogger(dir string, level string) (*Logger, error) {
	if dir == "" {
		return NewWriterLogger(os.Stderr, level), nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := NewWriterLogger(f, level)
	l.file = &fileHandle{f: f}
	return l, nil
}

// NewWriterLogger logs JSON lines to w.
func NewWriterLogger(w io.Writer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
	return &Logger{logger: slog.New(handler)}
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

func slogLevel(level string) slog.Level {
	switch ParseLevel(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel normalizes a level name, falling back to INFO.
func ParseLevel(level string) string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// WithSession tags every entry with the onboarding session id.
func (l *Logger) WithSession(sessionID string) *Logger {
	return l.With("session_id", sessionID)
}

// WithRegion tags every entry with the coordinator region name.
func (l *Logger) WithRegion(region string) *Logger {
	return l.With("region", region)
}

// WithComponent tags every entry with the emitting adapter or service.
func (l *Logger) WithComponent(component string) *Logger {
	return l.With("component", component)
}

// With adds alternating key/value attributes. Non-string keys are skipped.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || len(args) == 0 {
		return l
	}
	attrs := make([]any, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return &Logger{logger: l.logger.With(attrs...), file: l.file}
}

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Log(context.Background(), level, msg, args...)
}

// Slog exposes the underlying logger for libraries that accept *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return l.logger
}

// Close syncs and closes the log file. Loggers writing to stderr or a
// caller-supplied writer are left alone.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.file.mu.Lock()
	defer l.file.mu.Unlock()
	if l.file.f == nil {
		return nil
	}
	if err := l.file.f.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	if err := l.file.f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	l.file.f = nil
	return nil
}
