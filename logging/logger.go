package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the minimal logging interface used throughout Localmind. Users
// can provide their own implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoOpLogger discards all log output. It is the default wherever no logger is
// supplied so packages never need nil checks.
type NoOpLogger struct{}

// Debug discards the message.
func (NoOpLogger) Debug(string, ...any) {}

// Info discards the message.
func (NoOpLogger) Info(string, ...any) {}

// Warn discards the message.
func (NoOpLogger) Warn(string, ...any) {}

// Error discards the message.
func (NoOpLogger) Error(string, ...any) {}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from an existing *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultLogger creates a Logger backed by slog.Default().
func NewDefaultLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// Config configures construction of a RunLogger.
type Config struct {
	Level  slog.Level
	Format string // "json" or "text"
	Output io.Writer
}

// ParseLevel maps a configuration string onto a slog level. Unknown values
// fall back to info rather than failing startup.
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

// NewRunLogger builds a RunLogger writing structured records. A nil config
// yields JSON at info level on stdout.
func NewRunLogger(cfg *Config) *RunLogger {
	if cfg == nil {
		cfg = &Config{Level: slog.LevelInfo, Format: "json", Output: os.Stdout}
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &RunLogger{logger: slog.New(handler)}
}

// RunLogger is a contextual logger carrying the component, run and node
// identifiers of the code path emitting the record. With* methods return
// cheap clones so a run-scoped logger can be derived once and reused.
type RunLogger struct {
	logger *slog.Logger
	attrs  []any
}

// WithComponent attaches the logical component (engine, boundary, tool, ...).
func (l *RunLogger) WithComponent(component string) *RunLogger {
	return l.with("component", component)
}

// WithRun attaches the run identifier.
func (l *RunLogger) WithRun(runID string) *RunLogger {
	return l.with("run_id", runID)
}

// WithNode attaches the graph node currently executing.
func (l *RunLogger) WithNode(node string) *RunLogger {
	return l.with("node", node)
}

func (l *RunLogger) with(key string, value any) *RunLogger {
	attrs := make([]any, len(l.attrs), len(l.attrs)+2)
	copy(attrs, l.attrs)
	return &RunLogger{logger: l.logger, attrs: append(attrs, key, value)}
}

// Debug logs at debug level.
func (l *RunLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, append(l.attrs, args...)...)
}

// Info logs at info level.
func (l *RunLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, append(l.attrs, args...)...)
}

// Warn logs at warn level.
func (l *RunLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, append(l.attrs, args...)...)
}

// Error logs at error level.
func (l *RunLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, append(l.attrs, args...)...)
}

// LogToolCall records the outcome of a tool invocation.
func (l *RunLogger) LogToolCall(tool string, dur time.Duration, err error) {
	if err != nil {
		l.Error("tool call failed", "tool", tool, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	l.Info("tool call completed", "tool", tool, "duration_ms", dur.Milliseconds())
}

// LogModelCall records the outcome of an inference call.
func (l *RunLogger) LogModelCall(model string, dur time.Duration, err error) {
	if err != nil {
		l.Error("model call failed", "model", model, "duration_ms", dur.Milliseconds(), "error", err.Error())
		return
	}
	l.Info("model call completed", "model", model, "duration_ms", dur.Milliseconds())
}
