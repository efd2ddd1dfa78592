package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds CLI configuration.
// Priority: env vars > .env file > defaults.
type Config struct {
	LogLevel string
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
	}
}

func loadConfig() Config {
	// Layer 2: .env in the working directory (ignore if missing).
	_ = godotenv.Load()

	cfg := defaultConfig()

	// Layer 3: env vars override.
	if v := os.Getenv("FLOWLENS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}

// slogLevel maps the configured level name to a slog.Level, defaulting to
// info for unknown names.
func (c Config) slogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
