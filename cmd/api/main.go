// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Elib HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from the environment (and an optional .env file).
//  3. Connect to PostgreSQL (pgxpool).
//  4. Open the passcode store (Redis or in-process).
//  5. Run database migrations (idempotent).
//  6. Build the token service and the passcode notifier.
//  7. Wire domain services and handlers, seed the bootstrap administrator.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/elib/internal/api"
	"github.com/taibuivan/elib/internal/auth"
	"github.com/taibuivan/elib/internal/catalog"
	"github.com/taibuivan/elib/internal/notify"
	"github.com/taibuivan/elib/internal/platform/config"
	"github.com/taibuivan/elib/internal/platform/constants"
	"github.com/taibuivan/elib/internal/platform/middleware"
	"github.com/taibuivan/elib/internal/platform/migration"
	pgstore "github.com/taibuivan/elib/internal/platform/postgres"
	redisstore "github.com/taibuivan/elib/internal/platform/redis"
	"github.com/taibuivan/elib/internal/platform/sec"
	"github.com/taibuivan/elib/pkg/clock"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("otp_store", cfg.OtpStore),
		slog.String("notifier", cfg.Notifier),
	)

	// rootCtx lives until a shutdown signal and drives background loops.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Startup deadline so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Passcode Store ─────────────────────────────────────────────────
	health := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}

	var otpRepository auth.OtpRepository
	switch cfg.OtpStore {
	case config.OtpStoreRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		otpRepository = auth.NewOtpRepository(rdb)
		health.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }

	case config.OtpStoreMemory:
		memoryStore := auth.NewMemoryOtpRepository()
		defer memoryStore.Close()

		otpRepository = memoryStore
		log.Warn("otp_store_in_memory", slog.String("hint", "passcodes are lost on restart and not shared between replicas"))
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Tokens & Notifier ──────────────────────────────────────────────
	systemClock := clock.System{}

	tokenService, err := sec.NewTokenService(cfg.TokenConfig(), systemClock)
	must(log, err, "initialize token service")

	sender, err := newSender(startupCtx, cfg, log)
	must(log, err, "initialize notifier")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)

	credentialVerifier, err := auth.NewCredentialVerifier(userRepository)
	must(log, err, "initialize credential verifier")

	otpManager := auth.NewOtpManager(otpRepository, sender, systemClock, auth.OtpConfig{
		TTL:             cfg.OtpTTL,
		Length:          cfg.OtpLength,
		DeliveryTimeout: cfg.OtpDeliveryTimeout,
	})

	authService := auth.NewService(credentialVerifier, otpManager, auth.NewTokenIssuer(userRepository, tokenService))
	authLimiter := middleware.NewRateLimiter(rootCtx, constants.AuthRateLimitRPS, constants.AuthRateLimitBurst)

	catalogService := catalog.NewService(catalog.NewPostgresRepository(pool), systemClock)

	if cfg.SeedAdminUsername != "" {
		_, err := auth.EnsureUser(startupCtx, userRepository, auth.SeedAccount{
			Username: cfg.SeedAdminUsername,
			Password: cfg.SeedAdminPassword,
			Email:    cfg.SeedAdminEmail,
			Roles:    []string{sec.RoleAdministrator},
		})
		must(log, err, "seed administrator")
	}

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(health, log)

	server := api.NewServer(rootCtx, cfg, log, tokenService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, authLimiter.Handler),
		Catalog:   catalog.NewHandler(catalogService),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_failed", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
	}

	log.Info("server_stopped")
}

// newLogger builds the process-wide JSON logger and installs it as the default.
func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(logger)
	return logger
}

// newSender selects the passcode delivery channel named by NOTIFIER.
func newSender(ctx context.Context, cfg *config.Config, log *slog.Logger) (notify.Sender, error) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		return notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}), nil

	case config.NotifierSNS:
		return notify.NewSNSPublisher(ctx, notify.SNSConfig{
			TopicARN:    cfg.SNSTopicARN,
			Region:      cfg.AWSRegion,
			EndpointURL: cfg.AWSEndpointURL,
		})

	case config.NotifierLog:
		if cfg.IsProduction() {
			log.Warn("notifier_log_in_production", slog.String("hint", "passcodes are only written to the log"))
		}
		return notify.NewLogSender(log), nil
	}

	return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Only used during startup wiring. After startup, errors are returned and handled.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
