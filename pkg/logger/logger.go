package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger keeps the printf-style call sites used across the services while
// writing structured JSON through zap.
type Logger struct {
	base  *zap.Logger
	info  *zap.SugaredLogger
	error *zap.SugaredLogger
	warn  *zap.SugaredLogger
}

func New() *Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		base = zap.NewExample()
	}
	return newLogger(base)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return newLogger(zap.NewNop())
}

func newLogger(base *zap.Logger) *Logger {
	return &Logger{
		base:  base,
		info:  base.Sugar(),
		error: base.Sugar(),
		warn:  base.Sugar(),
	}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	child := l.base.Sugar().With(keysAndValues...).Desugar()
	return newLogger(child)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.info.Infof(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.error.Errorf(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.warn.Warnf(format, v...)
}

func (l *Logger) Sync() error {
	return l.base.Sync()
}
