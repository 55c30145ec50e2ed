// Package telemetry configures the process-wide structured logger.
package telemetry

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config selects the handler the process logs through.
type Config struct {
	Level string
	JSON  bool
}

var (
	initOnce sync.Once
	logger   *slog.Logger
)

// Init installs the process-wide logger once and returns it. Later calls
// return the logger from the first call regardless of their config.
func Init(cfg Config) *slog.Logger {
	initOnce.Do(func() {
		logger = slog.New(newHandler(os.Stderr, cfg))
		slog.SetDefault(logger)
	})
	return logger
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}
	if cfg.JSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a config string to a slog level, falling back to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
