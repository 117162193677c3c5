// Package config loads application configuration from the environment.
// A .env file in the working directory is honored for local development.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the Rengiat backend.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`

	// Port is the HTTP listen port.
	Port string `env:"PORT" env-default:"8080"`

	// Env selects runtime behavior ("development" or "production").
	Env string `env:"ENV" env-default:"development"`

	// MigrationsURL is the golang-migrate source for schema migrations.
	MigrationsURL string `env:"MIGRATIONS_URL" env-default:"file://migrations"`

	// SessionTimeout is the session inactivity timeout.
	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" env-default:"8h"`

	// BcryptCost is the cost factor for password hashing.
	BcryptCost int `env:"BCRYPT_COST" env-default:"12"`

	// LoginRateLimit is the number of login attempts allowed per minute per IP.
	LoginRateLimit int `env:"LOGIN_RATE_LIMIT" env-default:"5"`

	// AttachmentDir is the directory where entry attachments are stored.
	AttachmentDir string `env:"ATTACHMENT_DIR" env-default:"storage/attachments"`

	// AttachmentMaxBytes caps the accepted upload size.
	AttachmentMaxBytes int64 `env:"ATTACHMENT_MAX_BYTES" env-default:"5242880"`

	// AttachmentsEnabled toggles the upload endpoint.
	AttachmentsEnabled bool `env:"ATTACHMENTS_ENABLED" env-default:"true"`

	// ReportTimezone is the IANA zone used for "today" defaults and the
	// generated-at stamp on exports.
	ReportTimezone string `env:"REPORT_TIMEZONE" env-default:"Asia/Singapore"`
}

// Load reads configuration from the environment. A .env file is loaded
// first when present; real environment variables take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// The limiter's refill interval is time.Minute / LoginRateLimit, so
	// zero or negative values must never reach the division.
	if cfg.LoginRateLimit < 1 {
		cfg.LoginRateLimit = 1
	}

	return &cfg, nil
}

// Location resolves the configured report timezone, falling back to UTC
// when the zone name is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
