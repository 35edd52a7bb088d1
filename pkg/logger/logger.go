package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/yanqian/carbonlens/internal/infra/config"
)

// New constructs the service logger from the logging section of the config.
// LOG_LEVEL still wins over the file so operators can raise verbosity without a redeploy.
func New(cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = v
	}
	return newWithWriter(os.Stdout, cfg.Logging.Format, level)
}

func newWithWriter(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", "carbonlens")
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
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
