package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog logger scoped to a package, and optionally a file and
// function. Scoping returns a copy so a package level logger can be
// narrowed per call without affecting other callers.
type Logger struct {
	log      *slog.Logger
	pkg      string
	file     string
	function string
}

// Init replaces the process wide slog default used by every Logger.
func Init(level, format string) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, level, format)))
}

// NewHandler builds the slog handler for the given level and format
// ("json" or "text").
func NewHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func New(pkg string) Logger {
	return Logger{pkg: pkg}
}

// WithHandler pins the logger to a specific handler instead of the slog
// default. Used by tests that assert on output.
func (l Logger) WithHandler(h slog.Handler) Logger {
	l.log = slog.New(h)
	return l
}

func (l Logger) File(name string) Logger {
	l.file = name
	return l
}

func (l Logger) Function(name string) Logger {
	l.function = name
	return l
}

func (l Logger) Debug(msg string, args ...any) {
	l.logger().Debug(msg, args...)
}

func (l Logger) Info(msg string, args ...any) {
	l.logger().Info(msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.logger().Warn(msg, args...)
}

// Er logs err without returning it.
func (l Logger) Er(msg string, err error, args ...any) {
	l.logger().Error(msg, append([]any{"error", err}, args...)...)
}

// ErMsg logs msg at error level.
func (l Logger) ErMsg(msg string, args ...any) {
	l.logger().Error(msg, args...)
}

// Err logs err and returns it wrapped with msg, keeping it matchable with
// errors.Is.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.Er(msg, err, args...)
	if err == nil {
		return errors.New(msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Error logs msg and returns it as a new error.
func (l Logger) Error(msg string, args ...any) error {
	l.logger().Error(msg, args...)
	return errors.New(msg)
}

// ErrMsg returns msg as an error after logging it.
func (l Logger) ErrMsg(msg string) error {
	return l.Error(msg)
}

func (l Logger) logger() *slog.Logger {
	base := l.log
	if base == nil {
		base = slog.Default()
	}

	attrs := make([]any, 0, 6)
	if l.pkg != "" {
		attrs = append(attrs, "package", l.pkg)
	}
	if l.file != "" {
		attrs = append(attrs, "file", l.file)
	}
	if l.function != "" {
		attrs = append(attrs, "function", l.function)
	}

	return base.With(attrs...)
}
