// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import "sort"

// MatchOptions tunes a similarity query.
type MatchOptions struct {
	// MinRating is the rating floor a candidate must reach.
	MinRating float64

	// CastDepth is how many leading cast members of the reference count.
	CastDepth int

	// Exclude holds identifiers that must not be returned, on top of the
	// reference itself.
	Exclude map[string]struct{}

	Limit int
}

// MatchSimilar ranks items that share any genre, any director or any of the
// reference's first CastDepth cast members, rated at or above MinRating.
// The reference is always excluded. Order is rating descending, then
// identifier. A reference without genres, directors or cast matches every
// item that clears the floor.
func MatchSimilar(ref *Item, items []Item, opts MatchOptions) []Item {
	if ref == nil {
		return []Item{}
	}

	genres := toSet(ref.Genres)
	directors := toSet(ref.Directors)
	cast := toSet(truncate(ref.Cast, opts.CastDepth))
	unconstrained := !ref.HasAttributes()

	out := make([]Item, 0)
	for i := range items {
		it := &items[i]
		if it.ID == ref.ID {
			continue
		}
		if _, skip := opts.Exclude[it.ID]; skip {
			continue
		}
		if it.Rating < opts.MinRating {
			continue
		}
		if !unconstrained && !sharesAny(it.Genres, genres) && !sharesAny(it.Directors, directors) && !sharesAny(it.Cast, cast) {
			continue
		}
		out = append(out, *it)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, opts.Limit)
}

// SimilarFloor is the fixed floor of the generic similar-items operation.
func (c *Config) SimilarFloor() float64 {
	return c.Similar.MinRating
}

// BecauseYouWatchedFloor is the floor relative to the reference rating.
func (c *Config) BecauseYouWatchedFloor(ref *Item) float64 {
	return ref.Rating - c.BecauseYouWatched.RatingSlack
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
