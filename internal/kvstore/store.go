// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package kvstore implements the catalog and activity stores on BadgerDB for
// deployments that want an embedded store without DuckDB.
//
// Key layout:
//
//	movie:<id>                          -> JSON recommend.Item
//	user:<id>                           -> JSON userRecord
//	activity:<len>:<user>:<nanos>:<seq> -> JSON recommend.ActivityEntry
//	activity_ts:<nanos>:<user>:<seq>    -> JSON recommend.ActivityEntry
//
// The user segment of the history key carries its byte length, so the scan
// prefix for one user never matches another user whose id extends it.
// Timestamps are sign-flipped and zero-padded so lexical key order is
// chronological; the activity_ts index lets ListActivity seek straight to
// the window start.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/recommend"
)

// Key prefixes for BadgerDB storage
const (
	movieKeyPrefix        = "movie:"
	userKeyPrefix         = "user:"
	activityKeyPrefix     = "activity:"
	activityTimeKeyPrefix = "activity_ts:"
	activitySequenceKey   = "seq:activity"
)

// userRecord is the stored form of a user.
type userRecord struct {
	ID             string   `json:"id"`
	FavoriteGenres []string `json:"favoriteGenres"`
	Watchlist      []string `json:"watchlist"`
}

// Store implements recommend.CatalogStore, recommend.ActivityStore and
// seed.Writer on top of BadgerDB.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens the Badger directory (or an in-memory instance).
func Open(cfg config.BadgerConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	s, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened Badger instance. Close releases it.
func New(db *badger.DB) (*Store, error) {
	seq, err := db.GetSequence([]byte(activitySequenceKey), 256)
	if err != nil {
		return nil, fmt.Errorf("activity sequence: %w", err)
	}
	return &Store{db: db, seq: seq}, nil
}

// Close releases the sequence lease and closes the database.
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		_ = s.db.Close()
		return fmt.Errorf("release activity sequence: %w", err)
	}
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// GetItem returns a single movie or recommend.ErrNotFound.
func (s *Store) GetItem(_ context.Context, id string) (*recommend.Item, error) {
	var it recommend.Item
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, movieKeyPrefix+id, &it)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("movie %s: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get movie %s: %w", id, err)
	}
	it = recommend.NormalizeItem(it)
	return &it, nil
}

// QueryItems scans the catalog and keeps items matching q, ordered by id.
func (s *Store) QueryItems(ctx context.Context, q recommend.ItemQuery) ([]recommend.Item, error) {
	if len(q.IDs) > 0 {
		return s.itemsByID(ctx, q)
	}

	var items []recommend.Item
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, movieKeyPrefix, func(val []byte) error {
			var it recommend.Item
			if err := json.Unmarshal(val, &it); err != nil {
				return fmt.Errorf("decode movie: %w", err)
			}
			it = recommend.NormalizeItem(it)
			if matches(&it, q) {
				items = append(items, it)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	return items, nil
}

// itemsByID does point reads instead of a full scan.
func (s *Store) itemsByID(ctx context.Context, q recommend.ItemQuery) ([]recommend.Item, error) {
	var items []recommend.Item
	err := s.db.View(func(txn *badger.Txn) error {
		seen := make(map[string]struct{}, len(q.IDs))
		for _, id := range q.IDs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			var it recommend.Item
			err := getJSON(txn, movieKeyPrefix+id, &it)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			it = recommend.NormalizeItem(it)
			if matches(&it, q) {
				items = append(items, it)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query movies by id: %w", err)
	}
	sortByID(items)
	return items, nil
}

func matches(it *recommend.Item, q recommend.ItemQuery) bool {
	if it.Rating < q.MinRating {
		return false
	}
	if len(q.Genres) == 0 {
		return true
	}
	for _, g := range it.Genres {
		for _, want := range q.Genres {
			if g == want {
				return true
			}
		}
	}
	return false
}

// GetUserActivity returns the user's watch history, oldest first.
func (s *Store) GetUserActivity(ctx context.Context, userID string) ([]recommend.ActivityEntry, error) {
	var entries []recommend.ActivityEntry
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := getUser(txn, userID); err != nil {
			return err
		}
		return scanPrefix(ctx, txn, userActivityPrefix(userID), func(val []byte) error {
			var e recommend.ActivityEntry
			if err := json.Unmarshal(val, &e); err != nil {
				return fmt.Errorf("decode activity: %w", err)
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, wrapUserErr("get activity", userID, err)
	}
	return entries, nil
}

// GetWatchlist returns the ids on the user's watchlist.
func (s *Store) GetWatchlist(_ context.Context, userID string) ([]string, error) {
	var rec *userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getUser(txn, userID)
		return err
	})
	if err != nil {
		return nil, wrapUserErr("get watchlist", userID, err)
	}
	return rec.Watchlist, nil
}

// GetPreferences returns the user's declared favorite genres.
func (s *Store) GetPreferences(_ context.Context, userID string) ([]string, error) {
	var rec *userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getUser(txn, userID)
		return err
	})
	if err != nil {
		return nil, wrapUserErr("get preferences", userID, err)
	}
	return recommend.NormalizeTags(rec.FavoriteGenres), nil
}

// ListActivity returns activity across all users since the given time,
// oldest first. The zero time returns everything.
func (s *Store) ListActivity(ctx context.Context, since time.Time) ([]recommend.ActivityEntry, error) {
	var entries []recommend.ActivityEntry
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(activityTimeKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		start := prefix
		if !since.IsZero() {
			start = []byte(activityTimeKeyPrefix + timeKey(since))
		}
		for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var e recommend.ActivityEntry
				if err := json.Unmarshal(val, &e); err != nil {
					return fmt.Errorf("decode activity: %w", err)
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}

func getUser(txn *badger.Txn, userID string) (*userRecord, error) {
	var rec userRecord
	if err := getJSON(txn, userKeyPrefix+userID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func wrapUserErr(op, userID string, err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("user %s: %w", userID, recommend.ErrNotFound)
	}
	return fmt.Errorf("%s for %s: %w", op, userID, err)
}

func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func scanPrefix(ctx context.Context, txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// userActivityPrefix is the key prefix of one user's history.
func userActivityPrefix(userID string) string {
	return fmt.Sprintf("%s%d:%s:", activityKeyPrefix, len(userID), userID)
}

// timeKey renders t as fixed-width UTC nanoseconds. Flipping the sign bit
// keeps instants before 1970 ordered ahead of later ones.
func timeKey(t time.Time) string {
	return fmt.Sprintf("%020d", uint64(t.UTC().UnixNano())^(1<<63))
}
