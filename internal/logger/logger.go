// Package logger builds the service's zap loggers.
package logger

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EncoderConfig is the JSON layout shared by every logger: "ts" in RFC3339Nano, rendered in loc.
func EncoderConfig(loc *time.Location) zapcore.EncoderConfig {
	if loc == nil {
		loc = time.UTC
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}
	return cfg
}

// New builds a JSON zap logger writing to stdout at the given level.
// Unknown levels fall back to info.
func New(level string, loc *time.Location) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig = EncoderConfig(loc)
	cfg.OutputPaths = []string{"stdout"}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// NewWithWriter builds an info-level JSON logger writing to w.
func NewWithWriter(w io.Writer, loc *time.Location) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(EncoderConfig(loc)), zapcore.AddSync(w), zapcore.InfoLevel)
	return zap.New(core)
}

// Must is a helper that panics when the logger cannot be created.
func Must(logger *zap.Logger, err error) *zap.Logger {
	if err != nil {
		panic(err)
	}
	return logger
}

// Named returns a child logger with the provided component name.
func Named(base *zap.Logger, component string) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(component)
}
