// Package common provides shared utilities for investtrack
package common

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger to provide a consistent interface
type Logger struct {
	zerolog.Logger
}

// parseLevel maps a config level string to a zerolog level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a console logger on stderr with the specified level
func NewLogger(level string) *Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return NewLoggerWithOutput(level, output)
}

// NewLoggerWithOutput creates a logger writing to a specific output
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	logger := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewLoggerFromConfig builds a logger from the [logging] config section.
// Outputs may include "console" (stderr) and "file" (FilePath, appended).
// A file output that cannot be opened is skipped with a warning on stderr.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	var writers []io.Writer

	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	for _, out := range outputs {
		switch strings.ToLower(out) {
		case "console":
			if strings.EqualFold(cfg.Format, "json") {
				writers = append(writers, os.Stderr)
			} else {
				writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
			}
		case "file":
			if cfg.FilePath == "" {
				continue
			}
			if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
				os.Stderr.WriteString("logging: cannot create log directory: " + err.Error() + "\n")
				continue
			}
			f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				os.Stderr.WriteString("logging: cannot open log file: " + err.Error() + "\n")
				continue
			}
			writers = append(writers, f)
		}
	}

	if len(writers) == 0 {
		return NewSilentLogger()
	}
	if len(writers) == 1 {
		return NewLoggerWithOutput(cfg.Level, writers[0])
	}
	return NewLoggerWithOutput(cfg.Level, zerolog.MultiLevelWriter(writers...))
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	logger := zerolog.New(io.Discard).Level(zerolog.Disabled)
	return &Logger{Logger: logger}
}
