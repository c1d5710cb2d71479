// Package logging builds the slog loggers used by didi executables.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options configures NewLogger
type Options struct {
	Level     string
	Writer    io.Writer
	Component string
	NoColor   bool
}

// NewLogger returns a tint-formatted logger. Unknown levels fall back to info.
func NewLogger(opts Options) *slog.Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	lg := slog.New(tint.NewHandler(writer, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor,
	}))
	if component := strings.TrimSpace(opts.Component); component != "" {
		lg = lg.With("component", component)
	}
	return lg
}

// Setup installs a logger built from opts as the slog default
func Setup(opts Options) *slog.Logger {
	lg := NewLogger(opts)
	slog.SetDefault(lg)
	return lg
}

// ParseLevel maps a --log-level value to a slog level. The empty string
// means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
}
