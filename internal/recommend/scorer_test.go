// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScoreGenres(t *testing.T) {
	catalog := []Item{
		{ID: "m1", Genres: []string{"Action", "Drama"}},
		{ID: "m2", Genres: []string{"Action", "Drama"}},
		{ID: "m3", Genres: []string{"Comedy"}},
		{ID: "m4", Genres: []string{"Horror"}},
		{ID: "m5", Genres: []string{"Sci-Fi", "Action"}},
	}
	lookup := lookupFrom(catalog)
	weights := DefaultConfig().Weights

	tests := []struct {
		name    string
		profile *Profile
		topN    int
		want    []GenreWeight
	}{
		{
			name: "two watched items tie broken lexically",
			profile: &Profile{Activity: []ActivityEntry{
				{ItemID: "m1"}, {ItemID: "m2"},
			}},
			topN: 3,
			want: []GenreWeight{{"Action", 4}, {"Drama", 4}},
		},
		{
			name: "watched watchlisted and preferred accumulate to six",
			profile: &Profile{
				Activity:    []ActivityEntry{{ItemID: "m3"}},
				Watchlist:   []string{"m3"},
				Preferences: []string{"Comedy"},
			},
			topN: 3,
			want: []GenreWeight{{"Comedy", 6}},
		},
		{
			name: "repeated watches double count",
			profile: &Profile{Activity: []ActivityEntry{
				{ItemID: "m4"}, {ItemID: "m4"},
			}},
			topN: 3,
			want: []GenreWeight{{"Horror", 4}},
		},
		{
			name:    "preference applies once and without catalog presence",
			profile: &Profile{Preferences: []string{"Western", "Western"}},
			topN:    3,
			want:    []GenreWeight{{"Western", 3}},
		},
		{
			name: "truncates to top N",
			profile: &Profile{
				Activity:    []ActivityEntry{{ItemID: "m1"}, {ItemID: "m5"}},
				Watchlist:   []string{"m3"},
				Preferences: []string{"Horror"},
			},
			topN: 3,
			want: []GenreWeight{{"Action", 4}, {"Horror", 3}, {"Drama", 2}},
		},
		{
			name:    "unknown ids contribute nothing",
			profile: &Profile{Activity: []ActivityEntry{{ItemID: "gone"}}, Watchlist: []string{"gone"}},
			topN:    3,
			want:    []GenreWeight{},
		},
		{
			name:    "empty profile",
			profile: &Profile{},
			topN:    3,
			want:    []GenreWeight{},
		},
		{
			name:    "nil profile",
			profile: nil,
			topN:    3,
			want:    []GenreWeight{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreGenres(tt.profile, lookup, weights, tt.topN)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ScoreGenres() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScoreGenres_CustomWeights(t *testing.T) {
	lookup := lookupFrom([]Item{{ID: "m1", Genres: []string{"Drama"}}})
	p := &Profile{
		Activity:    []ActivityEntry{{ItemID: "m1"}},
		Watchlist:   []string{"m1"},
		Preferences: []string{"Drama"},
	}

	got := ScoreGenres(p, lookup, SignalWeights{Watched: 5, Watchlist: 0, Preference: 1}, 0)
	if len(got) != 1 || got[0].Weight != 6 {
		t.Errorf("ScoreGenres() = %v, want [{Drama 6}]", got)
	}
}

func TestScoreGenres_Deterministic(t *testing.T) {
	var catalog []Item
	for _, g := range []string{"A", "B", "C", "D", "E", "F"} {
		catalog = append(catalog, Item{ID: "id-" + g, Genres: []string{g}})
	}
	p := &Profile{Watchlist: itemIDs(catalog)}
	lookup := lookupFrom(catalog)

	first := ScoreGenres(p, lookup, DefaultConfig().Weights, 3)
	for i := 0; i < 20; i++ {
		got := ScoreGenres(p, lookup, DefaultConfig().Weights, 3)
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
	if first[0].Genre != "A" {
		t.Errorf("first genre = %s, want A", first[0].Genre)
	}
}
