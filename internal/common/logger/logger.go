package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes one JSON entry per action, tagged with the service and host.
type Logger struct {
	service string
	base    *zap.Logger // core and hostname, no service
	z       *zap.Logger
}

func New(service string) *Logger {
	return NewWithLevel(service, "info")
}

func NewWithLevel(service, level string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return newLogger(service, z.With(zap.String("hostname", hostname())))
}

func newLogger(service string, base *zap.Logger) *Logger {
	return &Logger{service: service, base: base, z: base.With(zap.String("service", service))}
}

// NewNop discards everything; used by tests.
func NewNop() *Logger { return newLogger("", zap.NewNop()) }

// Named returns a logger for another service sharing the same core. Its
// entries carry service=<service> in place of the parent's.
func (l *Logger) Named(service string) *Logger {
	return newLogger(service, l.base)
}

// Component tags entries with a component inside the same service.
func (l *Logger) Component(name string) *Logger {
	return &Logger{service: l.service, base: l.base, z: l.z.With(zap.String("component", name))}
}

func (l *Logger) Info(action string, fields map[string]any) {
	l.z.Info(action, toFields(action, fields, nil)...)
}

func (l *Logger) Debug(action string, fields map[string]any) {
	l.z.Debug(action, toFields(action, fields, nil)...)
}

func (l *Logger) Warn(action string, fields map[string]any) {
	l.z.Warn(action, toFields(action, fields, nil)...)
}

func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.z.Error(action, toFields(action, fields, err)...)
}

func (l *Logger) Sync() { _ = l.z.Sync() }

func toFields(action string, fields map[string]any, err error) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+2)
	out = append(out, zap.String("action", action))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	return out
}

func hostname() string { h, _ := os.Hostname(); return h }
