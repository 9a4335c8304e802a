// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/datastore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/seed"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	metrics.SetAppInfo(version)

	logging.Info().
		Str("version", version).
		Str("store", cfg.Store.Backend).
		Str("cache", cfg.Cache.Backend).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Marquee with supervisor tree")
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin; set CORS_ORIGINS in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, startTime); err != nil {
		logging.Error().Err(err).Msg("Marquee stopped with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Marquee stopped")
}

// run wires every component and blocks until ctx is canceled or the
// supervisor gives up.
//
//nolint:gocyclo // sequential setup steps
func run(ctx context.Context, cfg *config.Config, startTime time.Time) error {
	store, err := datastore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Str("backend", cfg.Store.Backend).Msg("Store initialized")

	if cfg.Store.SeedFile != "" {
		if err := applySeed(ctx, store, cfg.Store.SeedFile); err != nil {
			return err
		}
	}

	responseCache, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if responseCache != nil {
		defer func() {
			if err := responseCache.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing response cache")
			}
		}()
	}

	opts := []recommend.Option{recommend.WithObserver(metrics.EngineObserver{})}
	if responseCache != nil {
		opts = append(opts, recommend.WithCache(responseCache))
	}
	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(cfg.Cache), store, store, logging.WithComponent("recommend"), opts...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("create jwt manager: %w", err)
	}
	userLimiter := auth.NewRateLimiter(cfg.Security.UserRateLimit, cfg.Security.UserRateBurst)
	defer userLimiter.Stop()
	authMW := auth.NewMiddleware(jwtManager, userLimiter, cfg.Security.TrustedProxies)

	checks := []api.ReadinessCheck{{Name: "store", Ping: store.Ping}}
	if rc, ok := responseCache.(*cache.RedisResponseCache); ok {
		checks = append(checks, api.ReadinessCheck{Name: "cache", Ping: rc.Ping})
	}
	handler := api.NewHandler(engine, checks...)
	router := api.NewRouter(handler, authMW, api.NewChiMiddlewareFromSecurity(&cfg.Security, authMW))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddBackgroundService(services.NewUptimeService(startTime, 15*time.Second))
	if responseCache != nil {
		// half the TTL bounds how long the top 10 entry can stay expired
		tree.AddBackgroundService(services.NewTrendingWarmer(engine, services.TrendingWarmerConfig{
			Interval: cfg.Cache.TTL / 2,
			Timeout:  cfg.Recommend.RequestTimeout,
		}, logging.WithService("trending-warmer")))
	}

	logging.Info().Msg("Starting supervisor tree...")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
			logging.Warn().Int("count", len(report)).Msg("Services did not stop cleanly")
		}
		return fmt.Errorf("supervisor: %w", err)
	}
	return nil
}

func applySeed(ctx context.Context, w seed.Writer, path string) error {
	fixture, err := seed.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load seed file: %w", err)
	}
	stats, err := seed.Apply(ctx, w, fixture, time.Now())
	if err != nil {
		return fmt.Errorf("apply seed file: %w", err)
	}
	logging.Info().
		Str("path", path).
		Int("movies", stats.Movies).
		Int("users", stats.Users).
		Int("activity", stats.Activity).
		Msg("Seed fixture applied")
	return nil
}
