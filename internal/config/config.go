package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment, after an optional .env file.
type Config struct {
	DBPath       string        `env:"TRAITLINE_DB"`
	RemoteDSN    string        `env:"TRAITLINE_REMOTE_DSN"`
	UserID       string        `env:"TRAITLINE_USER_ID"`
	WriteTimeout time.Duration `env:"TRAITLINE_WRITE_TIMEOUT" envDefault:"10s"`
	CatalogPath  string        `env:"TRAITLINE_CATALOG"`
	TimerHours   float64       `env:"TRAITLINE_TIMER_HOURS" envDefault:"6"`
	Verbose      bool          `env:"TRAITLINE_VERBOSE"`
}

// Load reads .env files (missing files are ignored) and parses the environment.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.TimerHours <= 0 {
		return nil, fmt.Errorf("TRAITLINE_TIMER_HOURS must be positive, got %v", cfg.TimerHours)
	}
	return &cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
