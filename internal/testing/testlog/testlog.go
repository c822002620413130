// Package testlog provides loggers for tests.
package testlog

import (
	"io"
	"log/slog"
)

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
