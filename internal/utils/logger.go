package utils

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process-wide structured logger. level selects the
// verbosity (debug, warn, error; anything else means info) and json picks
// the handler format, so local runs stay readable while deployments emit
// machine-parseable lines.
func NewLogger(level string, json bool) *slog.Logger {
	verbosity := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		verbosity = slog.LevelDebug
	case "warn":
		verbosity = slog.LevelWarn
	case "error":
		verbosity = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: verbosity}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
