// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"sort"
	"time"
)

// TrendingResult is the outcome of an aggregation.
type TrendingResult struct {
	Entries []TrendingEntry

	// Dropped counts aggregated items that no longer resolve in the catalog.
	Dropped int
}

// Items returns the bare catalog items in rank order.
func (r *TrendingResult) Items() []Item {
	items := make([]Item, len(r.Entries))
	for i := range r.Entries {
		items[i] = r.Entries[i].Item
	}
	return items
}

// AggregateTrending groups activity by item and ranks the result.
//
// With a positive window only entries watched at or after now-window count,
// and the order is watch count descending, mean completion descending, then
// identifier. A zero window aggregates everything and orders by watch count,
// then identifier. Items that lookup cannot resolve are dropped and counted.
func AggregateTrending(activity []ActivityEntry, lookup ItemLookup, window time.Duration, now time.Time, limit int) TrendingResult {
	windowed := window > 0
	cutoff := now.Add(-window)

	type bucket struct {
		count         int
		completionSum float64
		progressSum   float64
	}
	buckets := make(map[string]*bucket)

	for i := range activity {
		a := &activity[i]
		if windowed && a.WatchedAt.Before(cutoff) {
			continue
		}
		b, ok := buckets[a.ItemID]
		if !ok {
			b = &bucket{}
			buckets[a.ItemID] = b
		}
		b.count++
		b.completionSum += a.CompletionPercent()
		b.progressSum += a.Progress
	}

	result := TrendingResult{Entries: make([]TrendingEntry, 0, len(buckets))}
	for id, b := range buckets {
		it, ok := resolve(lookup, id)
		if !ok {
			result.Dropped++
			continue
		}
		result.Entries = append(result.Entries, TrendingEntry{
			Item: *it,
			Stats: TrendingStats{
				WatchCount:    b.count,
				AvgCompletion: b.completionSum / float64(b.count),
				TotalProgress: b.progressSum,
			},
		})
	}

	entries := result.Entries
	sort.Slice(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		if a.Stats.WatchCount != b.Stats.WatchCount {
			return a.Stats.WatchCount > b.Stats.WatchCount
		}
		if windowed && a.Stats.AvgCompletion != b.Stats.AvgCompletion {
			return a.Stats.AvgCompletion > b.Stats.AvgCompletion
		}
		return a.Item.ID < b.Item.ID
	})

	result.Entries = truncate(entries, limit)
	for i := range result.Entries {
		result.Entries[i].Rank = i + 1
	}
	return result
}
