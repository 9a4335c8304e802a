// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/recommend"
)

// TrendingSource computes the windowed top 10.
type TrendingSource interface {
	TopTen(ctx context.Context) (*recommend.Response, error)
}

// TrendingWarmerConfig holds configuration for the trending warmer.
type TrendingWarmerConfig struct {
	// Interval between refreshes. Keep it below the response cache TTL so
	// the cached top 10 is rarely cold when a request arrives.
	Interval time.Duration

	// Timeout bounds one refresh.
	Timeout time.Duration
}

// TrendingWarmer periodically requests the top 10 so the response cache is
// repopulated soon after each entry expires.
type TrendingWarmer struct {
	source TrendingSource
	config TrendingWarmerConfig
	logger zerolog.Logger
	name   string
}

// NewTrendingWarmer creates a warmer. Zero config values get defaults of one
// minute between refreshes and a 30 second timeout.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrendingWarmer(source TrendingSource, cfg TrendingWarmerConfig, logger zerolog.Logger) *TrendingWarmer {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &TrendingWarmer{
		source: source,
		config: cfg,
		logger: logger.With().Str("service", "trending-warmer").Logger(),
		name:   "trending-warmer",
	}
}

// Serve implements suture.Service. It warms once at start, then on every tick.
// Refresh failures are logged and retried on the next tick.
func (w *TrendingWarmer) Serve(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.config.Interval).Msg("trending warmer starting")
	w.refresh(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("trending warmer shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *TrendingWarmer) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := w.source.TopTen(refreshCtx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn().Err(err).Msg("trending refresh failed")
		}
		return
	}
	w.logger.Debug().
		Int("items", len(resp.Trending)).
		Dur("duration", time.Since(start)).
		Msg("trending refreshed")
}

// String returns the service name for logging.
func (w *TrendingWarmer) String() string {
	return w.name
}
