// Package logger builds the process-wide structured logger. All components
// log through slog so declaration workflow entries, audit drops, and HTTP
// access lines share one JSON stream.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/duca-customs-backend/internal/config"
)

// NewLogger returns a JSON slog.Logger at the configured level. Unknown
// level names fall back to info. Source locations are attached only at
// debug, where the extra volume is acceptable.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	log := slog.New(handler)
	log.Info("logger initialized", "level", level)
	return log
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
