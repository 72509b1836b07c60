package main

import (
	"io"
	"log/slog"
	"os"
)

const appName = "pixel-label"

// NewLogger returns a structured JSON logger on stdout tagged with the app name.
func NewLogger(level slog.Leveler) *slog.Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("app", appName)
}
