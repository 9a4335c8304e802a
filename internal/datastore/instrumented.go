// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package datastore

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// Instrumented records latency and failures of every read.
type Instrumented struct {
	Store
	backend string
}

// NewInstrumented wraps s. Writes and lifecycle calls pass straight through.
func NewInstrumented(s Store, backend string) *Instrumented {
	return &Instrumented{Store: s, backend: backend}
}

func (i *Instrumented) observe(op string, start time.Time, err error) {
	if errors.Is(err, recommend.ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreQuery(i.backend, op, time.Since(start), err)
}

// GetItem implements recommend.CatalogStore.
func (i *Instrumented) GetItem(ctx context.Context, id string) (*recommend.Item, error) {
	start := time.Now()
	it, err := i.Store.GetItem(ctx, id)
	i.observe("get_item", start, err)
	return it, err
}

// QueryItems implements recommend.CatalogStore.
func (i *Instrumented) QueryItems(ctx context.Context, q recommend.ItemQuery) ([]recommend.Item, error) {
	start := time.Now()
	items, err := i.Store.QueryItems(ctx, q)
	i.observe("query_items", start, err)
	return items, err
}

// GetUserActivity implements recommend.ActivityStore.
func (i *Instrumented) GetUserActivity(ctx context.Context, userID string) ([]recommend.ActivityEntry, error) {
	start := time.Now()
	entries, err := i.Store.GetUserActivity(ctx, userID)
	i.observe("get_user_activity", start, err)
	return entries, err
}

// GetWatchlist implements recommend.ActivityStore.
func (i *Instrumented) GetWatchlist(ctx context.Context, userID string) ([]string, error) {
	start := time.Now()
	ids, err := i.Store.GetWatchlist(ctx, userID)
	i.observe("get_watchlist", start, err)
	return ids, err
}

// GetPreferences implements recommend.ActivityStore.
func (i *Instrumented) GetPreferences(ctx context.Context, userID string) ([]string, error) {
	start := time.Now()
	prefs, err := i.Store.GetPreferences(ctx, userID)
	i.observe("get_preferences", start, err)
	return prefs, err
}

// ListActivity implements recommend.ActivityStore.
func (i *Instrumented) ListActivity(ctx context.Context, since time.Time) ([]recommend.ActivityEntry, error) {
	start := time.Now()
	entries, err := i.Store.ListActivity(ctx, since)
	i.observe("list_activity", start, err)
	return entries, err
}
