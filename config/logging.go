package config

import (
	"log/slog"
	"strings"
)

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"warn"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Sanitize normalises level and format, falling back to warn/text.
func (l *LoggingConfig) Sanitize() {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		l.Level = "warn"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	if l.Format != "json" {
		l.Format = "text"
	}
}

// SlogLevel maps Level onto a slog.Level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
