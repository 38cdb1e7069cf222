// Package logging configures structured logging for splitsync.
//
// Two output formats are supported:
//
//	pretty: colored terminal output via tint (default)
//	json:   one JSON object per line, for log shippers
//
// Environment variables:
//
//	LOG_LEVEL:  debug, info, warn, error (default: info)
//	LOG_FORMAT: pretty, json (default: pretty)
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures the default slog logger from LOG_LEVEL and LOG_FORMAT.
func Setup() {
	SetupWith(levelFromEnv(), os.Getenv("LOG_FORMAT"))
}

// SetupWith configures the default slog logger with an explicit level and format.
func SetupWith(level slog.Level, format string) {
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	}
	slog.SetDefault(slog.New(handler))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
