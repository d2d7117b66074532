// Package logging sets up the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// Open returns a logger writing JSON lines to path, plus a close function.
// An empty path yields a discard logger; the TUI owns the terminal, so
// nothing may log there.
func Open(path string) (*slog.Logger, func() error, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	log := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return log, f.Close, nil
}
