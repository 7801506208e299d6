package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// createLogger creates the process logger. Text output uses tint for
// readable local logs; JSON suits log collectors.
func createLogger(logLevel string, asJSON bool) *slog.Logger {
	level := parseLogLevel(logLevel)

	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
	}))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
