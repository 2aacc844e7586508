// Package log configures the process-wide slog logger for the Taskmill
// binaries and carries request-scoped loggers through contexts.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the process default logger at the given level. Unknown
// level names fall back to info, matching the binaries' flag default.
func Setup(logLevel string) {
	var level slog.Level

	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns the default logger scoped with a "module" attribute.
// Every Taskmill component logs under its own module name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
