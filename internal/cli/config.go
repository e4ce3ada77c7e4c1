package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config carries settings read from the environment. Command flags
// override whatever the environment provides.
type Config struct {
	// DatabasePath is the default SQLite journal location.
	DatabasePath string `env:"SPLAY_DB" envDefault:"splay.db"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"SPLAY_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig parses the SPLAY_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured level name to a slog level. Unknown
// names fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
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

// newLogger builds the logger for a command run. Verbose mode forces
// debug level regardless of SPLAY_LOG_LEVEL. Logs go to stderr so they
// never mix with command output.
func newLogger(opts *RootOptions, cfg Config) *slog.Logger {
	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
