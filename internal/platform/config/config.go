// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first through 'joho/godotenv' when present.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, token service) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/elib/internal/platform/sec"
)

// # Enumerations

// Supported notification channels for one-time passcodes.
const (
	NotifierSMTP = "smtp"
	NotifierSNS  = "sns"
	NotifierLog  = "log"
)

// Supported one-time passcode stores.
const (
	OtpStoreRedis  = "redis"
	OtpStoreMemory = "memory"
)

// OTP length bounds, inclusive.
const (
	MinOtpLength = 4
	MaxOtpLength = 10
)

// # Configuration Schema

// Config holds all runtime configuration for the Elib API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis). Required when OtpStore is "redis".
	RedisURL string `env:"REDIS_URL"`

	// Token signing
	JWTSecret     string        `env:"JWT_SECRET,required,unset"`
	JWTIssuer     string        `env:"JWT_ISSUER"      envDefault:"elib"`
	JWTAccessTTL  time.Duration `env:"JWT_ACCESS_TTL"  envDefault:"15m"`
	JWTRefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"720h"`

	// One-time passcodes
	OtpTTL             time.Duration `env:"OTP_TTL"              envDefault:"5m"`
	OtpLength          int           `env:"OTP_LENGTH"           envDefault:"6"`
	OtpStore           string        `env:"OTP_STORE"            envDefault:"redis"`
	OtpDeliveryTimeout time.Duration `env:"OTP_DELIVERY_TIMEOUT" envDefault:"10s"`

	// Notification channel
	Notifier string `env:"NOTIFIER" envDefault:"log"`

	// SMTP mailer
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD,unset"`
	SMTPFrom     string `env:"SMTP_FROM"     envDefault:"no-reply@elib.local"`

	// AWS SNS publisher
	SNSTopicARN    string `env:"SNS_TOPIC_ARN"`
	AWSRegion      string `env:"AWS_REGION"        envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Optional bootstrap administrator
	SeedAdminUsername string `env:"SEED_ADMIN_USERNAME"`
	SeedAdminPassword string `env:"SEED_ADMIN_PASSWORD,unset"`
	SeedAdminEmail    string `env:"SEED_ADMIN_EMAIL"`
}

// # Configuration Loading

// Load reads an optional .env file, parses environment variables into a
// [Config] struct and validates the result.
func Load() (*Config, error) {

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < sec.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", sec.MinSecretLength))
	}
	if c.JWTAccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL must be positive"))
	}
	if c.JWTRefreshTTL <= c.JWTAccessTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be longer than JWT_ACCESS_TTL"))
	}
	if c.OtpTTL <= 0 {
		errs = append(errs, errors.New("OTP_TTL must be positive"))
	}
	if c.OtpLength < MinOtpLength || c.OtpLength > MaxOtpLength {
		errs = append(errs, fmt.Errorf("OTP_LENGTH must be between %d and %d", MinOtpLength, MaxOtpLength))
	}

	switch c.OtpStore {
	case OtpStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when OTP_STORE=redis"))
		}
	case OtpStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("OTP_STORE %q is not one of redis, memory", c.OtpStore))
	}

	switch c.Notifier {
	case NotifierSMTP:
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required when NOTIFIER=smtp"))
		}
	case NotifierSNS:
		if c.SNSTopicARN == "" {
			errs = append(errs, errors.New("SNS_TOPIC_ARN is required when NOTIFIER=sns"))
		}
	case NotifierLog:
	default:
		errs = append(errs, fmt.Errorf("NOTIFIER %q is not one of smtp, sns, log", c.Notifier))
	}

	if c.SeedAdminUsername != "" && (c.SeedAdminPassword == "" || c.SeedAdminEmail == "") {
		errs = append(errs, errors.New("SEED_ADMIN_PASSWORD and SEED_ADMIN_EMAIL are required with SEED_ADMIN_USERNAME"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// TokenConfig derives the immutable signing configuration.
func (c *Config) TokenConfig() sec.TokenConfig {
	return sec.TokenConfig{
		Secret:     []byte(c.JWTSecret),
		Issuer:     c.JWTIssuer,
		AccessTTL:  c.JWTAccessTTL,
		RefreshTTL: c.JWTRefreshTTL,
	}
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
