// Package logging is a small structured logger over zap.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

type Field = zap.Field

var (
	String  = zap.String
	Int     = zap.Int
	Uint64  = zap.Uint64
	Float64 = zap.Float64
	Err     = zap.Error
	Any     = zap.Any
)

type Logger struct {
	zapLogger *zap.Logger
	zapLevel  zapcore.Level
}

// New builds a console logger writing to stderr.
func New(level Level) *Logger {
	zapLevel := toZapLevel(level)
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return &Logger{zapLogger: zapLogger, zapLevel: zapLevel}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zapLogger: zap.NewNop(), zapLevel: zapcore.InvalidLevel}
}

// FromZap wraps an existing zap logger, mostly for tests with observers.
func FromZap(l *zap.Logger) *Logger {
	return &Logger{zapLogger: l, zapLevel: l.Level()}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.zapLogger.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.zapLogger.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.zapLogger.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.zapLogger.Error(msg, fields...) }

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{zapLogger: l.zapLogger.With(fields...), zapLevel: l.zapLevel}
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l.zapLogger.Core().Enabled(toZapLevel(level))
}

func (l *Logger) Sync() error { return l.zapLogger.Sync() }

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelInfo:
		return zap.InfoLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
