package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
)

var _ primary.Logger = (*ZapLogger)(nil)

// ZapLogger implements the Logger interface with zap
type ZapLogger struct {
	logger *zap.SugaredLogger
}

// NewZapLogger creates a new zap logger at info level
func NewZapLogger() *ZapLogger {
	return NewZapLoggerWithLevel("info")
}

// NewZapLoggerWithLevel creates a zap logger; unknown levels fall back to info
func NewZapLoggerWithLevel(level string) *ZapLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}

	return &ZapLogger{
		logger: logger.Sugar(),
	}
}

// NewNopLogger discards everything; used by tests
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop().Sugar()}
}

// Info logs an info message
func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.logger.Infow(msg, args...)
}

// Error logs an error message
func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.logger.Errorw(msg, args...)
}

// Debug logs a debug message
func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debugw(msg, args...)
}

// Warn logs a warning message
func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.logger.Warnw(msg, args...)
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
