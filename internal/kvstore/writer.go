// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package kvstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/recommend"
)

// PutItems stores movies, replacing existing ones with the same id.
// A WriteBatch keeps large catalogs out of a single transaction.
func (s *Store) PutItems(_ context.Context, items []recommend.Item) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range items {
		it := recommend.NormalizeItem(items[i])
		if it.ID == "" {
			return fmt.Errorf("movie at index %d has no id", i)
		}
		data, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("marshal movie %s: %w", it.ID, err)
		}
		if err := wb.Set([]byte(movieKeyPrefix+it.ID), data); err != nil {
			return fmt.Errorf("set movie %s: %w", it.ID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush movies: %w", err)
	}
	return nil
}

// PutUser creates or replaces a user with its preferences and watchlist.
func (s *Store) PutUser(_ context.Context, userID string, preferences, watchlist []string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	rec := userRecord{
		ID:             userID,
		FavoriteGenres: recommend.NormalizeTags(preferences),
		Watchlist:      dedupe(watchlist),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", userID, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(userKeyPrefix+userID), data); err != nil {
			return fmt.Errorf("set user %s: %w", userID, err)
		}
		return nil
	})
}

// PutActivity appends watch events under both the per-user and the time index.
func (s *Store) PutActivity(_ context.Context, entries []recommend.ActivityEntry) error {
	// Sequence numbers are leased before the transaction opens; renewing the
	// lease runs its own update.
	seqs := make([]uint64, len(entries))
	for i := range seqs {
		n, err := s.seq.Next()
		if err != nil {
			return fmt.Errorf("next activity sequence: %w", err)
		}
		seqs[i] = n
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for i := range entries {
			e := entries[i]
			e.WatchedAt = e.WatchedAt.UTC()

			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("marshal activity: %w", err)
			}

			ts := timeKey(e.WatchedAt)
			byUser := fmt.Sprintf("%s%s:%020d", userActivityPrefix(e.UserID), ts, seqs[i])
			byTime := fmt.Sprintf("%s%s:%s:%020d", activityTimeKeyPrefix, ts, e.UserID, seqs[i])

			if err := txn.Set([]byte(byUser), data); err != nil {
				return fmt.Errorf("set activity: %w", err)
			}
			if err := txn.Set([]byte(byTime), data); err != nil {
				return fmt.Errorf("set activity index: %w", err)
			}
		}
		return nil
	})
}

// dedupe drops repeated ids, keeping the first occurrence.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortByID(items []recommend.Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
