// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import "sort"

// FilterCandidates keeps items that share at least one genre with genres,
// are rated at or above minRating and are not in exclude. The result is
// ordered by rating, then votes, both descending, then by identifier, and
// truncated to limit. No match yields an empty slice, never an error.
func FilterCandidates(items []Item, exclude map[string]struct{}, genres []string, minRating float64, limit int) []Item {
	wanted := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		wanted[g] = struct{}{}
	}

	out := make([]Item, 0)
	for i := range items {
		it := &items[i]
		if it.Rating < minRating {
			continue
		}
		if _, skip := exclude[it.ID]; skip {
			continue
		}
		if !sharesAny(it.Genres, wanted) {
			continue
		}
		out = append(out, *it)
	}

	sortByPopularity(out)
	return truncate(out, limit)
}

// PopularityFallback orders the whole catalog by rating, votes and identifier
// and truncates to limit. It is what a user without any signal gets. Items in
// exclude are skipped, so with an empty exclude set the result is the plain
// global ordering.
func PopularityFallback(items []Item, exclude map[string]struct{}, limit int) []Item {
	out := make([]Item, 0, len(items))
	for i := range items {
		if _, skip := exclude[items[i].ID]; skip {
			continue
		}
		out = append(out, items[i])
	}
	sortByPopularity(out)
	return truncate(out, limit)
}

func sortByPopularity(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}
		return a.ID < b.ID
	})
}

func sharesAny(tags []string, set map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

func truncate[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
