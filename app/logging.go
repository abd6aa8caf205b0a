package app

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// SetupLogger builds the process logger. Unknown levels fall back to info
// and unknown formats to text.
func SetupLogger(service, version, level, format string) *slog.Logger {
	return newLogger(os.Stdout, service, version, level, format)
}

func newLogger(w io.Writer, service, version, level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		"service", service,
		"version", version,
		"pid", os.Getpid(),
	)
}
