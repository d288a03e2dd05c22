package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	zap *zap.Logger
}

// NewLogger builds a JSON logger on stdout whose records follow the Cloud
// Logging structured-log schema (severity, message, time, sourceLocation).
func NewLogger(logLevel string) (*Logger, error) {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(
		NewGoogleEncoder(),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(level),
	)

	return NewWithZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))), nil
}

// NewWithZap wraps an existing zap logger; used by tests to swap in an
// observer core.
func NewWithZap(zapLogger *zap.Logger) *Logger {
	return &Logger{zap: zapLogger}
}

func parseLogLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "dpanic":
		return zapcore.DPanicLevel, nil
	case "panic":
		return zapcore.PanicLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s, defaulting to info", level)
	}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, fields...)
}

func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, fields...)
}

func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{
		zap: l.zap.With(fields...),
	}
}

// Tee returns a logger that also writes every record to core, leaving the
// original output untouched. Used to attach the live log tail.
func (l *Logger) Tee(core zapcore.Core) *Logger {
	return &Logger{
		zap: l.zap.WithOptions(zap.WrapCore(func(existing zapcore.Core) zapcore.Core {
			return zapcore.NewTee(existing, core)
		})),
	}
}

func (l *Logger) Sync() error {
	return l.zap.Sync()
}

func (l *Logger) GetZap() *zap.Logger {
	return l.zap
}
