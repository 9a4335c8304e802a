// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"time"
)

// ItemQuery narrows a catalog scan. The zero value selects every item.
type ItemQuery struct {
	// Genres keeps items sharing at least one genre. Empty means any.
	Genres []string

	// MinRating keeps items rated at or above this value.
	MinRating float64

	// IDs keeps only the listed items. Empty means any.
	IDs []string
}

// CatalogStore is the read side of the catalog.
// Implementations must return ErrNotFound (possibly wrapped) for unknown ids.
type CatalogStore interface {
	// GetItem returns a single catalog item.
	GetItem(ctx context.Context, id string) (*Item, error)

	// QueryItems returns every item matching q. Order is unspecified;
	// the engine sorts explicitly.
	QueryItems(ctx context.Context, q ItemQuery) ([]Item, error)
}

// ActivityStore is the read side of user identity and activity.
// Implementations must return ErrNotFound (possibly wrapped) for unknown users.
type ActivityStore interface {
	// GetUserActivity returns the user's watch history.
	GetUserActivity(ctx context.Context, userID string) ([]ActivityEntry, error)

	// GetWatchlist returns the ids on the user's watchlist.
	GetWatchlist(ctx context.Context, userID string) ([]string, error)

	// GetPreferences returns the user's declared favorite genres.
	GetPreferences(ctx context.Context, userID string) ([]string, error)

	// ListActivity returns activity across all users since the given time.
	// The zero time returns everything.
	ListActivity(ctx context.Context, since time.Time) ([]ActivityEntry, error)
}

// ResultCache stores responses for the non-personal modes.
// A cache miss and a cache failure look the same to the engine.
type ResultCache interface {
	Get(ctx context.Context, key string) (*Response, bool)
	Set(ctx context.Context, key string, resp *Response)
}

// ItemLookup resolves catalog ids during scoring and aggregation.
type ItemLookup func(id string) (*Item, bool)

func resolve(lookup ItemLookup, id string) (*Item, bool) {
	if lookup == nil {
		return nil, false
	}
	return lookup(id)
}

// lookupFrom indexes items by id.
func lookupFrom(items []Item) ItemLookup {
	index := make(map[string]*Item, len(items))
	for i := range items {
		index[items[i].ID] = &items[i]
	}
	return func(id string) (*Item, bool) {
		it, ok := index[id]
		return it, ok
	}
}
