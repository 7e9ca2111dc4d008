// Package logging builds the structured logger shared by commands and backends.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. Debug output is enabled only when
// debug is true; otherwise only warnings and errors are emitted so that
// swallowed backend failures still leave a trace.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
