// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import "sort"

// ScoreGenres builds the genre affinity of a user and returns the topN
// strongest genres, highest weight first. Ties are broken by genre name.
//
// Every activity entry adds weights.Watched to each genre of its item, so an
// item watched twice counts twice. Watchlisted items add weights.Watchlist per
// genre. Declared preferences add weights.Preference once per distinct genre,
// whether or not any catalog item carries it. Identifiers that do not resolve
// through lookup contribute nothing.
//
// A topN of zero or less returns the full ordered map.
func ScoreGenres(p *Profile, lookup ItemLookup, weights SignalWeights, topN int) []GenreWeight {
	if p == nil {
		return []GenreWeight{}
	}

	affinity := make(map[string]float64)

	for i := range p.Activity {
		addItemGenres(affinity, lookup, p.Activity[i].ItemID, weights.Watched)
	}
	for _, id := range p.Watchlist {
		addItemGenres(affinity, lookup, id, weights.Watchlist)
	}

	declared := make(map[string]struct{}, len(p.Preferences))
	for _, g := range p.Preferences {
		if g == "" {
			continue
		}
		if _, dup := declared[g]; dup {
			continue
		}
		declared[g] = struct{}{}
		affinity[g] += weights.Preference
	}

	scored := make([]GenreWeight, 0, len(affinity))
	for g, w := range affinity {
		scored = append(scored, GenreWeight{Genre: g, Weight: w})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Weight != scored[j].Weight {
			return scored[i].Weight > scored[j].Weight
		}
		return scored[i].Genre < scored[j].Genre
	})

	if topN > 0 && len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

func addItemGenres(affinity map[string]float64, lookup ItemLookup, id string, weight float64) {
	it, ok := resolve(lookup, id)
	if !ok {
		return
	}
	for _, g := range it.Genres {
		affinity[g] += weight
	}
}

// genreNames extracts the genre names in order.
func genreNames(weights []GenreWeight) []string {
	names := make([]string, len(weights))
	for i := range weights {
		names[i] = weights[i].Genre
	}
	return names
}
