// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/elib/internal/platform/config"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func validConfig() config.Config {
	return config.Config{
		DatabaseURL:   "postgres://localhost/elib",
		RedisURL:      "redis://localhost:6379/0",
		JWTSecret:     validSecret,
		JWTAccessTTL:  15 * time.Minute,
		JWTRefreshTTL: 24 * time.Hour,
		OtpTTL:        5 * time.Minute,
		OtpLength:     6,
		OtpStore:      config.OtpStoreRedis,
		Notifier:      config.NotifierLog,
	}
}

/*
TestLoad_Defaults verifies required variables plus envDefault values.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/elib")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("ALLOWED_ORIGINS", "https://elib.app,https://admin.elib.app")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 720*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, 5*time.Minute, cfg.OtpTTL)
	assert.Equal(t, 6, cfg.OtpLength)
	assert.Equal(t, config.OtpStoreRedis, cfg.OtpStore)
	assert.Equal(t, config.NotifierLog, cfg.Notifier)
	assert.Equal(t, []string{"https://elib.app", "https://admin.elib.app"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())

	tokenConfig := cfg.TokenConfig()
	assert.Equal(t, []byte(validSecret), tokenConfig.Secret)
	assert.Equal(t, "elib", tokenConfig.Issuer)
}

/*
TestLoad_MissingSecret verifies the signing secret is never defaulted.
*/
func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/elib")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestConfig_Validate covers the cross-field rules.
*/
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"short_secret", func(c *config.Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"refresh_not_longer", func(c *config.Config) { c.JWTRefreshTTL = c.JWTAccessTTL }, "JWT_REFRESH_TTL"},
		{"otp_too_short", func(c *config.Config) { c.OtpLength = 3 }, "OTP_LENGTH"},
		{"otp_too_long", func(c *config.Config) { c.OtpLength = 11 }, "OTP_LENGTH"},
		{"otp_ttl_zero", func(c *config.Config) { c.OtpTTL = 0 }, "OTP_TTL"},
		{"unknown_store", func(c *config.Config) { c.OtpStore = "etcd" }, "OTP_STORE"},
		{"redis_store_without_url", func(c *config.Config) { c.RedisURL = "" }, "REDIS_URL"},
		{"memory_store_without_url", func(c *config.Config) { c.OtpStore = config.OtpStoreMemory; c.RedisURL = "" }, ""},
		{"unknown_notifier", func(c *config.Config) { c.Notifier = "pigeon" }, "NOTIFIER"},
		{"smtp_without_host", func(c *config.Config) { c.Notifier = config.NotifierSMTP }, "SMTP_HOST"},
		{"sns_without_topic", func(c *config.Config) { c.Notifier = config.NotifierSNS }, "SNS_TOPIC_ARN"},
		{"seed_admin_incomplete", func(c *config.Config) { c.SeedAdminUsername = "root" }, "SEED_ADMIN_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
