// Package logger initializes the process-wide zerolog logger.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Init creates the root logger. By default it writes human-readable output to
// stderr at warn level so CLI output stays clean; verbose lowers the level to
// debug. LOG_LEVEL overrides both, and logFile switches to JSON file output.
func Init(logFile string, verbose bool) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = parseLogLevel(env)
	}

	if logFile != "" {
		//nolint:gosec // G304: user-specified log file path is intentional
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		return zerolog.New(file).Level(level).With().Timestamp().Logger(), nil
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(console).Level(level).With().Timestamp().Logger(), nil
}

func parseLogLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
