package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/LavaJover/shvark-matrix-service/internal/config"
	nanoid "github.com/jaevor/go-nanoid"
)

// Setup builds the process logger from config and installs it as slog default.
func Setup(cfg config.LogConfig) (*slog.Logger, error) {
	var out io.Writer = os.Stdout
	switch strings.ToLower(cfg.LogOutput) {
	case "", "stdout":
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.LogOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out = f
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.LogLevel)}
	var h slog.Handler
	if strings.ToLower(cfg.LogFormat) == "text" {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	return l, nil
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewRequestIDGenerator returns a nanoid generator for audit request ids.
func NewRequestIDGenerator() (func() string, error) {
	return nanoid.Standard(15)
}
