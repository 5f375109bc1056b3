// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment variables read by Init when no explicit level is given.
const (
	EnvLevel  = "MARKSPLAN_LOG_LEVEL"
	EnvFormat = "MARKSPLAN_LOG_FORMAT"
)

// Init installs the default slog logger writing to stderr.
// level overrides MARKSPLAN_LOG_LEVEL when non-empty; the default is warn so
// normal runs stay quiet.
func Init(level string) {
	slog.SetDefault(New(os.Stderr, level))
}

// New builds a logger for w from level and MARKSPLAN_LOG_FORMAT (text or json).
func New(w io.Writer, level string) *slog.Logger {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.ToLower(os.Getenv(EnvFormat)) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
