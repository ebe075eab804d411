// Package logging configures the structured loggers used across wavecraft.
// It provides a JSON logger for machine consumption, a text logger for
// humans, and rotating per-service file loggers.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger

// humanLevel gates the human-readable logger so debug output can be
// toggled after initialization.
var humanLevel = func() *slog.LevelVar {
	v := new(slog.LevelVar)
	v.Set(slog.LevelInfo)
	return v
}()

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		label, exists := levelNames[level]
		if !exists {
			label = level.String()
		}
		a.Value = slog.StringValue(label)
	}
	return a
}

// Init initializes the logging system with structured and human-readable
// loggers. JSON goes to stdout, text to stderr.
func Init() {
	structuredLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceLevelNames,
	}))

	humanReadableLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       humanLevel,
		ReplaceAttr: replaceLevelNames,
	}))

	slog.SetDefault(structuredLogger)
}

// SetLevel adjusts the human-readable logger's minimum level.
func SetLevel(level slog.Level) {
	humanLevel.Set(level)
}

// SetOutput redirects both loggers, preserving handler configuration.
// Primarily useful in tests.
func SetOutput(structuredOutput, humanReadableOutput io.Writer) {
	structuredLogger = slog.New(slog.NewJSONHandler(structuredOutput, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceLevelNames,
	}))
	humanReadableLogger = slog.New(slog.NewTextHandler(humanReadableOutput, &slog.HandlerOptions{
		Level:       humanLevel,
		ReplaceAttr: replaceLevelNames,
	}))
	slog.SetDefault(structuredLogger)
}

// Structured returns the globally configured structured (JSON) logger.
// Returns nil if Init() has not been called.
func Structured() *slog.Logger {
	return structuredLogger
}

// HumanReadable returns the globally configured human-readable logger.
func HumanReadable() *slog.Logger {
	return humanReadableLogger
}

// ForService creates a new logger instance with the 'service' attribute
// added, using the global structured logger as the base. Returns nil if
// Init() has not been called.
func ForService(serviceName string) *slog.Logger {
	if structuredLogger == nil {
		return nil
	}
	return structuredLogger.With("service", serviceName)
}

// Debug logs a debug message using the default slog logger.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message using the default slog logger.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message using the default slog logger.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message using the default slog logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Fatal logs a message at the custom Fatal level and exits.
func Fatal(msg string, args ...any) {
	slog.Log(context.TODO(), LevelFatal, msg, args...)
	os.Exit(1)
}

// RotationSettings controls file logger rotation. Values are passed in
// explicitly so this package never reaches into global configuration.
type RotationSettings struct {
	MaxSizeMB  int // rotate after this many megabytes
	MaxBackups int // retained rotated files
	MaxAgeDays int // retained age in days
}

// DefaultRotation is used when the caller passes a zero RotationSettings.
var DefaultRotation = RotationSettings{MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28}

// NewFileLogger creates a slog.Logger writing JSON to filePath with
// lumberjack rotation, tagged with the given service attribute. It returns
// the logger, a close function for the underlying writer, and an error if
// the log directory cannot be created.
func NewFileLogger(filePath, serviceName string, level slog.Level, rotation RotationSettings) (*slog.Logger, func() error, error) {
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	if rotation == (RotationSettings{}) {
		rotation = DefaultRotation
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
	}

	handler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})

	logger := slog.New(handler).With("service", serviceName)

	return logger, logWriter.Close, nil
}
