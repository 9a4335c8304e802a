// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"math"
	"strings"
)

// Rating scale bounds.
const (
	MinItemRating = 0.0
	MaxItemRating = 10.0
)

// NormalizeItem applies the store-boundary rules: identifiers and tags are
// trimmed, empty tags are dropped, ratings are clamped to [0, 10] and negative
// vote counts become zero. Stores call it on every item they hand out.
func NormalizeItem(it Item) Item {
	it.ID = strings.TrimSpace(it.ID)
	it.Title = strings.TrimSpace(it.Title)
	it.Genres = NormalizeTags(it.Genres)
	it.Cast = NormalizeTags(it.Cast)
	it.Directors = NormalizeTags(it.Directors)

	switch {
	case math.IsNaN(it.Rating), it.Rating < MinItemRating:
		it.Rating = MinItemRating
	case it.Rating > MaxItemRating:
		it.Rating = MaxItemRating
	}
	if it.Votes < 0 {
		it.Votes = 0
	}
	return it
}

// NormalizeTags trims every tag and drops empty ones. Order is preserved,
// which matters for cast billing. Returns nil for an empty result.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
