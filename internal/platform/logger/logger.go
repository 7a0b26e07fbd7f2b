package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to stdout. Level defaults to info;
// WORKLENS_LOG_LEVEL=debug flips on debug output.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("WORKLENS_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
