// Package logging builds the slog logger used by every command.
//
// Logs always go to the error stream: stdout carries search results or MCP
// frames. CHUNKGREP_LOG_LEVEL and CHUNKGREP_JSON_LOG override the configured
// level and format.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLogLevel = "CHUNKGREP_LOG_LEVEL"
	EnvJSONLog  = "CHUNKGREP_JSON_LOG"
)

// New creates a logger writing to w. level is one of debug, info, warn or
// error; format is text or json. Environment overrides win.
func New(w io.Writer, level, format string) *slog.Logger {
	if env := os.Getenv(EnvLogLevel); env != "" {
		level = env
	}
	if isJSON(os.Getenv(EnvJSONLog)) {
		format = "json"
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog level; unknown names mean warn
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func isJSON(mode string) bool {
	mode = strings.ToLower(mode)
	return mode == "1" || mode == "true" || mode == "json"
}
