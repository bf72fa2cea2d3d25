// Package logging configures the process-wide slog logger for webhunt.
// Reports are written to files and the run summary to stderr, so all
// diagnostics share stderr and stdout stays clean for piped output.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init sets the default logger: a text handler on stderr at the given
// level. At debug level the handler also records source positions, which
// is what -verbose is for.
func Init(level slog.Level) {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to
// slog.Level. Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
