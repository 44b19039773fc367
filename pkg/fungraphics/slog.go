package fungraphics

import (
	"io"
	"log/slog"
	"os"
)

// Logger receives the diagnostics of a FunGraphics instance: out-of-frame
// drawing, presentation failures and lifecycle messages. Arguments after
// msg are alternating key-value pairs, as with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps a *slog.Logger to implement the Logger interface.
//
// Example:
//
//	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
//	opts := fungraphics.DefaultOptions()
//	opts.Logger = fungraphics.NewSlogAdapter(slog.New(handler))
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a Logger adapter from a *slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// With returns an adapter that adds args to every record.
func (s *SlogAdapter) With(args ...any) *SlogAdapter {
	return &SlogAdapter{logger: s.logger.With(args...)}
}

func (s *SlogAdapter) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }
func (s *SlogAdapter) Info(msg string, args ...any)  { s.logger.Info(msg, args...) }
func (s *SlogAdapter) Warn(msg string, args ...any)  { s.logger.Warn(msg, args...) }
func (s *SlogAdapter) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

// DefaultLogger returns a text Logger on stderr at Info level.
func DefaultLogger() Logger {
	return textLogger(os.Stderr, slog.LevelInfo, false)
}

// DebugLogger returns a text Logger on stderr at Debug level that includes
// the source location of each record.
func DebugLogger() Logger {
	return textLogger(os.Stderr, slog.LevelDebug, true)
}

// JSONLogger returns a Logger that writes JSON records to w, or to stderr
// when w is nil.
func JSONLogger(w io.Writer, level slog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogAdapter{logger: slog.New(handler)}
}

func textLogger(w io.Writer, level slog.Level, source bool) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: source,
	})
	return &SlogAdapter{logger: slog.New(handler).With("component", "fungraphics")}
}

// NopLogger returns a Logger that discards all messages.
func NopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
