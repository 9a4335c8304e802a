// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// memStore implements CatalogStore and ActivityStore for testing.
type memStore struct {
	items      []Item
	activity   map[string][]ActivityEntry
	watchlists map[string][]string
	prefs      map[string][]string

	// users lists known users. A user absent here is ErrNotFound.
	users map[string]bool

	itemErr     error
	queryErr    error
	activityErr error
	listErr     error

	// listStarted and listRelease, when set, hold ListActivity until
	// listRelease is closed or the call's context ends.
	listStarted chan struct{}
	listRelease chan struct{}

	listCalls atomic.Int32
	mu        sync.Mutex
	queries   []ItemQuery
}

func newMemStore(items ...Item) *memStore {
	return &memStore{
		items:      items,
		activity:   make(map[string][]ActivityEntry),
		watchlists: make(map[string][]string),
		prefs:      make(map[string][]string),
		users:      make(map[string]bool),
	}
}

func (m *memStore) addUser(id string, activity []ActivityEntry, watchlist, prefs []string) {
	m.users[id] = true
	m.activity[id] = activity
	m.watchlists[id] = watchlist
	m.prefs[id] = prefs
}

func (m *memStore) GetItem(_ context.Context, id string) (*Item, error) {
	if m.itemErr != nil {
		return nil, m.itemErr
	}
	for i := range m.items {
		if m.items[i].ID == id {
			it := m.items[i]
			return &it, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) QueryItems(_ context.Context, q ItemQuery) ([]Item, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()

	if m.queryErr != nil {
		return nil, m.queryErr
	}
	genres := toSet(q.Genres)
	ids := toSet(q.IDs)
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		if it.Rating < q.MinRating {
			continue
		}
		if len(genres) > 0 && !sharesAny(it.Genres, genres) {
			continue
		}
		if len(ids) > 0 {
			if _, ok := ids[it.ID]; !ok {
				continue
			}
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *memStore) GetUserActivity(_ context.Context, userID string) ([]ActivityEntry, error) {
	if m.activityErr != nil {
		return nil, m.activityErr
	}
	if !m.users[userID] {
		return nil, ErrNotFound
	}
	return m.activity[userID], nil
}

func (m *memStore) GetWatchlist(_ context.Context, userID string) ([]string, error) {
	if !m.users[userID] {
		return nil, ErrNotFound
	}
	return m.watchlists[userID], nil
}

func (m *memStore) GetPreferences(_ context.Context, userID string) ([]string, error) {
	if !m.users[userID] {
		return nil, ErrNotFound
	}
	return m.prefs[userID], nil
}

func (m *memStore) ListActivity(ctx context.Context, since time.Time) ([]ActivityEntry, error) {
	m.listCalls.Add(1)
	if m.listRelease != nil {
		if m.listStarted != nil {
			select {
			case m.listStarted <- struct{}{}:
			default:
			}
		}
		select {
		case <-m.listRelease:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []ActivityEntry
	for _, entries := range m.activity {
		for _, a := range entries {
			if !since.IsZero() && a.WatchedAt.Before(since) {
				continue
			}
			out = append(out, a)
		}
	}
	return out, nil
}

// mapCache implements ResultCache for testing.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]*Response
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*Response)}
}

func (c *mapCache) Get(_ context.Context, key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *mapCache) Set(_ context.Context, key string, resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = resp
}

// countingObserver implements Observer for testing.
type countingObserver struct {
	mu        sync.Mutex
	outcomes  map[string]int
	fallbacks int
	dropped   int
	hits      int
	misses    int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{outcomes: make(map[string]int)}
}

func (o *countingObserver) ObserveRequest(mode, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[mode+"/"+outcome]++
}

func (o *countingObserver) ObserveFallback(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks++
}

func (o *countingObserver) ObserveDropped(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped += n
}

func (o *countingObserver) ObserveCache(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func itemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

func recIDs(recs []Recommendation) []string {
	ids := make([]string, len(recs))
	for i := range recs {
		ids[i] = recs[i].ID
	}
	return ids
}

func watched(userID, itemID string, at time.Time) ActivityEntry {
	return ActivityEntry{UserID: userID, ItemID: itemID, WatchedAt: at, Progress: 5400, Duration: 6000}
}
