// Package logging configures the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// New returns a slog.Logger configured for the given environment: JSON in
// prod, human-readable text everywhere else.
func New(env string) *slog.Logger {
	var handler slog.Handler
	if env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler)
}
