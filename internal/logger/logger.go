package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface used across the pipeline. Every call
// carries a human message, a stable event tag, and free-form fields.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

// ZapLogger implements Logger over a zap core.
type ZapLogger struct {
	log *zap.Logger
}

// New builds a production JSON logger at the given level ("debug", "info",
// "warn", "error"); unknown values fall back to info.
func New(level string) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.DisableStacktrace = true

	log, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{log: log}, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) DebugObj(msg, event string, fields map[string]any) {
	l.log.Debug(msg, objFields(event, fields)...)
}

func (l *ZapLogger) InfoObj(msg, event string, fields map[string]any) {
	l.log.Info(msg, objFields(event, fields)...)
}

func (l *ZapLogger) WarnObj(msg, event string, fields map[string]any) {
	l.log.Warn(msg, objFields(event, fields)...)
}

func (l *ZapLogger) ErrorObj(msg, event string, fields map[string]any) {
	l.log.Error(msg, objFields(event, fields)...)
}

// Sync flushes buffered log entries. Call on shutdown.
func (l *ZapLogger) Sync() error { return l.log.Sync() }

func objFields(event string, fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	out = append(out, zap.String("event", event))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// NopLogger discards everything. Useful as a default for optional loggers.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}
