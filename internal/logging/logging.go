// internal/logging/logging.go
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w, at Debug level when debug is set
// and Info otherwise.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(w io.Writer, debug bool) *slog.Logger {
	logger := New(w, debug)
	slog.SetDefault(logger)
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
