package services

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements domain.Logger on top of a sugared zap logger.
// Args are alternating key/value pairs.
type ZapLogger struct {
	l *zap.SugaredLogger
}

// NewLogger builds a zap logger for the given level and format (json or console)
func NewLogger(levelStr, format string) *ZapLogger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{l: logger.Sugar()}
}

// NewZapLogger wraps an existing *zap.Logger
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l.Sugar()}
}

// NewNopLogger discards everything
func NewNopLogger() *ZapLogger {
	return &ZapLogger{l: zap.NewNop().Sugar()}
}

// Error logs an error message
func (z *ZapLogger) Error(msg string, err error, args ...interface{}) {
	z.l.Errorw(msg, append(args, zap.Error(err))...)
}

// Warn logs a warning
func (z *ZapLogger) Warn(msg string, args ...interface{}) {
	z.l.Warnw(msg, args...)
}

// Info logs an info message
func (z *ZapLogger) Info(msg string, args ...interface{}) {
	z.l.Infow(msg, args...)
}

// Debug logs a debug message
func (z *ZapLogger) Debug(msg string, args ...interface{}) {
	z.l.Debugw(msg, args...)
}

// With returns a child logger carrying the given key/value pairs
func (z *ZapLogger) With(args ...interface{}) *ZapLogger {
	return &ZapLogger{l: z.l.With(args...)}
}

// Sync flushes buffered entries
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}
