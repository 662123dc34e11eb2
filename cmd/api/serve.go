// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-identity/internal/api"
	"github.com/taibuivan/yomira-identity/internal/platform/config"
	"github.com/taibuivan/yomira-identity/internal/platform/constants"
	"github.com/taibuivan/yomira-identity/internal/platform/metrics"
	"github.com/taibuivan/yomira-identity/internal/platform/middleware"
	"github.com/taibuivan/yomira-identity/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-identity/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-identity/internal/platform/redis"
	"github.com/taibuivan/yomira-identity/internal/platform/sec"
	"github.com/taibuivan/yomira-identity/internal/users/account"
	"github.com/taibuivan/yomira-identity/internal/users/auth"
)

// runServe wires every dependency and blocks until SIGINT/SIGTERM.
//
// # Startup Sequence
//
//  1. Load configuration and initialize the structured logger.
//  2. Open the account store (PostgreSQL with migrations, or in-memory).
//  3. Connect to Redis when configured; otherwise rate limit in-process.
//  4. Wire services and handlers.
//  5. Serve until a signal arrives, then drain in-flight requests.
func runServe(cmd *cobra.Command, _ []string) error {

	// ── 1. Configuration & Logger ─────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		newLogger(false).Error("startup_failure", slog.String("stage", "load_configuration"), slog.Any("error", err))
		return err
	}

	log := newLogger(cfg.Debug)
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	rootCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Misconfiguration should fail quickly rather than hang on retries forever.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 2. Account Store ──────────────────────────────────────────────────
	var repository auth.AccountRepository
	health := api.HealthDependencies{}

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		if err != nil {
			return startupFailure(log, "connect_postgres", err)
		}
		defer func() {
			log.Info("postgres_pool_closing")
			pool.Close()
		}()

		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			return startupFailure(log, "run_migrations", err)
		}

		repository = auth.NewAccountRepository(pool)
		health.CheckDatabase = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }

	case config.StoreDriverMemory:
		log.Warn("memory_store_selected", slog.String("hint", "accounts are lost on restart"))
		repository = auth.NewMemoryAccountRepository()
	}

	// ── 3. Rate Limiter ───────────────────────────────────────────────────
	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		if err != nil {
			return startupFailure(log, "connect_redis", err)
		}
		defer func() {
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow)
		health.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	} else {
		limiter = middleware.NewMemoryLimiter(rootCtx, cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	// ── 4. Domain Wiring ──────────────────────────────────────────────────
	issuer, err := sec.NewTokenIssuer([]byte(cfg.AccessSecret), []byte(cfg.RefreshSecret), cfg.JWTAlgorithm, cfg.JWTIssuer)
	if err != nil {
		return startupFailure(log, "initialize_token_issuer", err)
	}

	hasher := sec.NewBcryptHasher(sec.DefaultHashCost)
	liveness, readiness := api.NewHealthHandlers(health, log)

	server := api.NewServer(cfg, log, limiter, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   metrics.Handler(),
		Auth:      auth.NewHandler(auth.NewService(repository, hasher, issuer)),
		Account:   account.NewHandler(account.NewService(repository, hasher), issuer),
	})

	// ── 5. Serve & Graceful Shutdown ──────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		return startupFailure(log, "listen", err)
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("server_shutdown_failed", slog.Any("error", err))
		return err
	}

	log.Info("server_stopped")
	return nil
}

// startupFailure logs a structured fatal error and returns it for cobra's exit code.
func startupFailure(log *slog.Logger, stage string, err error) error {
	wrapped := oops.In("startup").With("stage", stage).Wrap(err)
	log.Error("startup_failure", slog.String("stage", stage), slog.Any("error", wrapped))
	return wrapped
}
