// Package logutil builds the process slog.Logger from viper state.
package logutil

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoggerFromViper constructs a logger from the resolved configuration:
// logging.format selects the handler, the verbose count selects the level
// (0 warn, 1 info, 2+ debug) unless logging.level is set explicitly.
func LoggerFromViper() (*slog.Logger, error) {
	level := levelFromVerbosity(viper.GetInt("verbose"))
	if viper.IsSet("logging.level") {
		parsed, err := parseSlogLevel(viper.GetString("logging.level"))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	format := strings.ToLower(strings.TrimSpace(viper.GetString("logging.format")))
	switch format {
	case "", "text":
		h = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("unknown logging.format: %s", format)
	}

	return slog.New(h), nil
}

func levelFromVerbosity(count int) slog.Level {
	switch {
	case count <= 0:
		return slog.LevelWarn
	case count == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func parseSlogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown logging.level: %s", s)
	}
}
