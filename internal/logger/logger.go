// Package logger provides structured logging for the pyast tools.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Global logger instance
var defaultLogger *slog.Logger

// logFile is the file opened for Config.LogFile, closed by Close or the next
// Init.
var logFile *os.File

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config holds logger configuration
type Config struct {
	Level     LogLevel
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
	LogFile   string
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// ParseLevel maps a level name such as "debug" or "WARN" to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	switch cfg.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	var file *os.File
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		file, output = f, f
	}

	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	if err := Close(); err != nil {
		if file != nil {
			file.Close()
		}
		return err
	}
	logFile = file
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return nil
}

// Close closes the log file opened by Init, if any. Later messages are
// dropped until the next Init.
func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	defaultLogger = nil
	return err
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Error(msg, args...)
	}
}

// Conversion-specific logging helpers

// LogPhase logs the start of a pipeline phase
func LogPhase(phase string, file string) {
	Debug("Starting phase", "phase", phase, "file", file)
}

// LogConversion logs a finished conversion
func LogConversion(file string, version string, nodeCount int, elapsed time.Duration) {
	Debug("Conversion complete", "file", file, "python", version, "nodes", nodeCount, "elapsed", elapsed)
}

// LogCacheHit logs a conversion served from the cache
func LogCacheHit(file string, key string) {
	Debug("Cache hit", "file", file, "key", key)
}

// LogCacheSize logs the number of stored conversions
func LogCacheSize(path string, entries int) {
	Info("Cache size", "path", path, "entries", entries)
}

// LogBatchComplete logs the summary of a batch run
func LogBatchComplete(total, failed int, elapsed time.Duration) {
	Info("Batch complete", "files", total, "failed", failed, "elapsed", elapsed)
}

// LogError logs a failed conversion
func LogError(phase string, file string, err error) {
	Error("Conversion failed", "phase", phase, "file", file, "error", err)
}
