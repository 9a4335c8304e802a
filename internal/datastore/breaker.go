// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// ErrUnavailable is returned while the breaker rejects reads.
var ErrUnavailable = errors.New("store unavailable")

// Breaker guards store reads with a circuit breaker so a failing backend is
// given time to recover instead of receiving every request.
//
// Missing users or movies and caller cancellations count as successes; only
// genuine backend failures move the breaker towards open.
type Breaker struct {
	Store
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

// NewBreaker wraps s with a breaker configured from cfg.
func NewBreaker(s Store, name string, cfg config.BreakerConfig) *Breaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	minRequests := cfg.MinRequests
	ratio := cfg.FailureRatio

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= ratio
			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, recommend.ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Breaker{Store: s, cb: cb, name: name}
}

// State returns the current breaker state name.
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

// call runs fn through the breaker and records the outcome.
func call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	result, err := b.cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
	case err != nil && !errors.Is(err, recommend.ErrNotFound) && !errors.Is(err, context.Canceled):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	if err != nil {
		return zero, err
	}

	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// GetItem implements recommend.CatalogStore.
func (b *Breaker) GetItem(ctx context.Context, id string) (*recommend.Item, error) {
	return call(b, func() (*recommend.Item, error) { return b.Store.GetItem(ctx, id) })
}

// QueryItems implements recommend.CatalogStore.
func (b *Breaker) QueryItems(ctx context.Context, q recommend.ItemQuery) ([]recommend.Item, error) {
	return call(b, func() ([]recommend.Item, error) { return b.Store.QueryItems(ctx, q) })
}

// GetUserActivity implements recommend.ActivityStore.
func (b *Breaker) GetUserActivity(ctx context.Context, userID string) ([]recommend.ActivityEntry, error) {
	return call(b, func() ([]recommend.ActivityEntry, error) { return b.Store.GetUserActivity(ctx, userID) })
}

// GetWatchlist implements recommend.ActivityStore.
func (b *Breaker) GetWatchlist(ctx context.Context, userID string) ([]string, error) {
	return call(b, func() ([]string, error) { return b.Store.GetWatchlist(ctx, userID) })
}

// GetPreferences implements recommend.ActivityStore.
func (b *Breaker) GetPreferences(ctx context.Context, userID string) ([]string, error) {
	return call(b, func() ([]string, error) { return b.Store.GetPreferences(ctx, userID) })
}

// ListActivity implements recommend.ActivityStore.
func (b *Breaker) ListActivity(ctx context.Context, since time.Time) ([]recommend.ActivityEntry, error) {
	return call(b, func() ([]recommend.ActivityEntry, error) { return b.Store.ListActivity(ctx, since) })
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
