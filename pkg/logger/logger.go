package logger

import (
	"log/slog"
	"os"
	"strings"
)

var (
	defaultLogger *slog.Logger
	level         = new(slog.LevelVar)
)

// Init builds the process logger. Production gets JSON output, everything else text.
func Init(env string) {
	InitWithFormat(env, "", "")
}

func InitWithFormat(env, lvl, format string) {
	if format == "" {
		format = "text"
		if env == "production" {
			format = "json"
		}
	}
	if lvl == "" {
		lvl = "debug"
		if env == "production" {
			lvl = "info"
		}
	}
	SetLevel(lvl)

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// SetLevel changes the level of every logger derived from Init at runtime.
func SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

func Level() slog.Level {
	return level.Level()
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}
