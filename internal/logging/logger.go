// Package logging configures the process-wide zerolog logger. Components
// derive their own loggers via With().Str("component", ...).Logger().
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level   string `json:"level"`   // debug, info, warn, error
	Output  string `json:"output"`  // "stdout", "stderr", or file path
	Console bool   `json:"console"` // human-readable console output instead of JSON
}

// DefaultConfig returns info-level JSON logging to stdout.
func DefaultConfig() Config {
	return Config{Level: "info", Output: "stdout"}
}

// New builds the root logger from the configuration. Unknown levels fall
// back to info; an unopenable log file falls back to stdout.
func New(cfg Config) zerolog.Logger {
	var output io.Writer = os.Stdout
	switch cfg.Output {
	case "", "stdout":
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			output = file
		}
	}

	if cfg.Console {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
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
