// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Values come from environment
// variables, optionally seeded from a local .env file.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"campusevents"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`

	// LockTimeout bounds acquisition of the per-event registration lock.
	// Callers that cannot acquire it within this window get a retryable
	// busy error instead of blocking.
	LockTimeout time.Duration `env:"LOCK_TIMEOUT" envDefault:"5s"`

	// SMTP settings for confirmation emails. When SMTPHost is empty,
	// notifications fall back to the process log.
	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	SMTPFrom string `env:"SMTP_FROM" envDefault:"events@raghuenggcollege.in"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	// .env is optional; real deployments provide variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.LockTimeout <= 0 {
		return fmt.Errorf("config: LOCK_TIMEOUT must be positive, got %s", c.LockTimeout)
	}
	if c.DBName == "" {
		return fmt.Errorf("config: DB_NAME is required")
	}
	if c.SMTPHost != "" && c.SMTPFrom == "" {
		return fmt.Errorf("config: SMTP_FROM is required when SMTP_HOST is set")
	}
	return nil
}

// DSN builds a libpq-compatible connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// DatabaseURL builds a postgres:// URL, used by the migration runner.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}
