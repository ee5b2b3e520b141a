package logger

import (
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// Init configures the process logger. Production emits JSON for log
// shipping; any other environment gets readable text at debug level.
func Init(env string) {
	var handler slog.Handler

	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// LoggerWrapper returns the process logger, initializing a development
// one on first use so callers never get nil.
func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		Init("development")
	}
	return defaultLogger
}
