// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Note: this package imports no other internal package. Stores, caches and
// metrics are plugged in through the interfaces in store.go and Observer.

// Observer receives per-request outcomes. The metrics package provides the
// production implementation.
type Observer interface {
	// ObserveRequest records one engine call. outcome is "ok", "not_found",
	// "unauthenticated", "invalid" or "error".
	ObserveRequest(mode, outcome string, d time.Duration)

	// ObserveFallback records a popularity fallback.
	ObserveFallback(mode string)

	// ObserveDropped records trending aggregates whose item is gone.
	ObserveDropped(n int)

	// ObserveCache records a result cache lookup.
	ObserveCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, string, time.Duration) {}
func (nopObserver) ObserveFallback(string)                       {}
func (nopObserver) ObserveDropped(int)                           {}
func (nopObserver) ObserveCache(bool)                            {}

// Engine dispatches recommendation requests to the ranking components.
// It is safe for concurrent use.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	catalog  CatalogStore
	activity ActivityStore

	cache    ResultCache
	observer Observer
	now      func() time.Time

	// trending collapses concurrent identical aggregations.
	trending singleflight.Group
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithCache enables response caching for the non-personal modes.
func WithCache(c ResultCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithClock overrides the time source used for trending windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a recommendation engine over the given stores.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, catalog CatalogStore, activity ActivityStore, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if catalog == nil {
		return nil, errors.New("catalog store is required")
	}
	if activity == nil {
		return nil, errors.New("activity store is required")
	}

	e := &Engine{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "recommend").Logger(),
		catalog:  catalog,
		activity: activity,
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.config.Cache.Enabled {
		e.cache = nil
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Recommend runs one recommendation request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	req = e.prepareRequest(req)
	logger := e.requestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	if e.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.RequestTimeout)
		defer cancel()
	}

	resp, err := e.dispatch(ctx, req)
	outcome := outcomeOf(err)
	e.observer.ObserveRequest(req.Mode.String(), outcome, time.Since(start))

	if err != nil {
		if outcome == "error" {
			logger.Error().Err(err).Msg("recommendation failed")
		} else {
			logger.Debug().Err(err).Str("outcome", outcome).Msg("recommendation rejected")
		}
		return nil, err
	}

	if resp.Fallback {
		e.observer.ObserveFallback(req.Mode.String())
	}

	logger.Debug().
		Int("returned", len(resp.Recommendations)).
		Bool("fallback", resp.Fallback).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("recommendation complete")

	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) dispatch(ctx context.Context, req Request) (*Response, error) {
	switch req.Mode {
	case ModePersonalized:
		return e.personalized(ctx, req)
	case ModeTopPicks:
		return e.topPicks(ctx, req)
	case ModeSimilar:
		return e.similar(ctx, req)
	case ModeBecauseYouWatched:
		return e.becauseYouWatched(ctx, req)
	case ModeTrending:
		return e.trendingMode(ctx, req)
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidRequest, int(req.Mode))
	}
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Limit > e.config.Trending.MaxLimit {
		req.Limit = e.config.Trending.MaxLimit
	}
	return req
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) requestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Str("mode", req.Mode.String()).
		Logger()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	default:
		return "error"
	}
}

// cached wraps a computation with the optional result cache.
func (e *Engine) cached(ctx context.Context, key string, compute func() (*Response, error)) (*Response, error) {
	if e.cache == nil {
		return compute()
	}
	if resp, ok := e.cache.Get(ctx, key); ok {
		e.observer.ObserveCache(true)
		return resp, nil
	}
	e.observer.ObserveCache(false)

	resp, err := compute()
	if err != nil {
		return nil, err
	}
	e.cache.Set(ctx, key, resp)
	return resp, nil
}
