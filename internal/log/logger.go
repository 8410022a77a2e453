// Package log wires structured logging for the process and the HTTP
// layer. Everything rides on log/slog; this only centralizes setup.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs a text slog handler at the given level as the process
// default and returns it. Level names are case-insensitive; unknown
// names fall back to info.
func Setup(level string) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
