// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package datastore opens the configured catalog/activity backend and layers
// metrics and a circuit breaker over its reads.
package datastore

import (
	"context"
	"fmt"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/kvstore"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/seed"
)

// Backend names accepted in config.StoreConfig.Backend.
const (
	BackendDuckDB = "duckdb"
	BackendBadger = "badger"
)

// Store is everything the service needs from a backend.
type Store interface {
	recommend.CatalogStore
	recommend.ActivityStore
	seed.Writer

	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*database.DB)(nil)
	_ Store = (*kvstore.Store)(nil)
)

// Open opens the backend named in cfg.Store and wraps it with read metrics
// and, when enabled, the circuit breaker.
func Open(cfg *config.Config) (Store, error) {
	var (
		inner Store
		err   error
	)
	switch cfg.Store.Backend {
	case BackendDuckDB:
		inner, err = database.New(&cfg.Database)
	case BackendBadger:
		inner, err = kvstore.Open(cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	logging.Info().
		Str("backend", cfg.Store.Backend).
		Bool("breaker", cfg.Store.Breaker.Enabled).
		Msg("Store opened")

	return Wrap(inner, cfg.Store.Backend, cfg.Store.Breaker), nil
}

// Wrap layers instrumentation and the optional breaker over inner.
// The breaker sits outside so rejected calls are not timed as store reads.
func Wrap(inner Store, backend string, breaker config.BreakerConfig) Store {
	var s Store = NewInstrumented(inner, backend)
	if breaker.Enabled {
		s = NewBreaker(s, backend+"-store", breaker)
	}
	return s
}
