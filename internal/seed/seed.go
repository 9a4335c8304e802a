// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package seed loads a YAML fixture of movies and users into a store so the
// service can run standalone.
//
// Example fixture:
//
//	movies:
//	  - id: tt0113277
//	    title: Heat
//	    genres: [Crime, Drama]
//	    directors: [Michael Mann]
//	    cast: [Al Pacino, Robert De Niro]
//	    rating: 8.3
//	    votes: 700000
//	users:
//	  - id: alice
//	    favorite_genres: [Crime]
//	    watchlist: [tt0102926]
//	    activity:
//	      - movie: tt0113277
//	        days_ago: 2
//	        progress: 9000
//	        duration: 10200
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/validation"
)

// Fixture is the root of a seed file.
type Fixture struct {
	Movies []Movie `yaml:"movies" validate:"dive"`
	Users  []User  `yaml:"users" validate:"dive"`
}

// Movie is one catalog entry in a fixture.
type Movie struct {
	ID        string   `yaml:"id" validate:"required"`
	Title     string   `yaml:"title" validate:"required"`
	Plot      string   `yaml:"plot"`
	Poster    string   `yaml:"poster"`
	Rated     string   `yaml:"rated"`
	Genres    []string `yaml:"genres"`
	Cast      []string `yaml:"cast"`
	Directors []string `yaml:"directors"`
	Year      int      `yaml:"year" validate:"gte=0"`
	Runtime   int      `yaml:"runtime" validate:"gte=0"`
	Rating    float64  `yaml:"rating" validate:"gte=0,lte=10"`
	Votes     int      `yaml:"votes" validate:"gte=0"`
	IMDbID    string   `yaml:"imdb_id"`
}

// User is one account with its signals.
type User struct {
	ID             string   `yaml:"id" validate:"required"`
	FavoriteGenres []string `yaml:"favorite_genres"`
	Watchlist      []string `yaml:"watchlist"`
	Activity       []Watch  `yaml:"activity" validate:"dive"`
}

// Watch is one activity record. Either WatchedAt or DaysAgo places it in time;
// DaysAgo keeps demo fixtures inside the trending window.
type Watch struct {
	Movie     string    `yaml:"movie" validate:"required"`
	WatchedAt time.Time `yaml:"watched_at"`
	DaysAgo   int       `yaml:"days_ago" validate:"gte=0"`
	Progress  float64   `yaml:"progress" validate:"gte=0"`
	Duration  float64   `yaml:"duration" validate:"gte=0"`
}

// Writer is the write side a store exposes for seeding.
type Writer interface {
	PutItems(ctx context.Context, items []recommend.Item) error
	PutUser(ctx context.Context, userID string, preferences, watchlist []string) error
	PutActivity(ctx context.Context, entries []recommend.ActivityEntry) error
}

// Stats summarizes an Apply run.
type Stats struct {
	Movies   int
	Users    int
	Activity int
}

// LoadFile reads and validates a fixture from disk.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes and validates a fixture. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks field constraints and cross references: movie ids are
// unique and every watchlist or activity entry names a fixture movie.
func (f *Fixture) Validate() error {
	if verr := validation.ValidateStruct(f); verr != nil {
		return fmt.Errorf("invalid seed fixture: %w", verr)
	}

	movies := make(map[string]struct{}, len(f.Movies))
	for _, m := range f.Movies {
		if _, dup := movies[m.ID]; dup {
			return fmt.Errorf("invalid seed fixture: duplicate movie id %q", m.ID)
		}
		movies[m.ID] = struct{}{}
	}

	users := make(map[string]struct{}, len(f.Users))
	for _, u := range f.Users {
		if _, dup := users[u.ID]; dup {
			return fmt.Errorf("invalid seed fixture: duplicate user id %q", u.ID)
		}
		users[u.ID] = struct{}{}

		for _, id := range u.Watchlist {
			if _, ok := movies[id]; !ok {
				return fmt.Errorf("invalid seed fixture: user %q watchlist references unknown movie %q", u.ID, id)
			}
		}
		for _, w := range u.Activity {
			if _, ok := movies[w.Movie]; !ok {
				return fmt.Errorf("invalid seed fixture: user %q activity references unknown movie %q", u.ID, w.Movie)
			}
		}
	}
	return nil
}

// Items converts the fixture movies into normalized catalog items.
func (f *Fixture) Items() []recommend.Item {
	items := make([]recommend.Item, 0, len(f.Movies))
	for _, m := range f.Movies {
		items = append(items, recommend.NormalizeItem(recommend.Item{
			ID:        m.ID,
			Title:     m.Title,
			Plot:      m.Plot,
			Poster:    m.Poster,
			Rated:     m.Rated,
			Genres:    m.Genres,
			Cast:      m.Cast,
			Directors: m.Directors,
			Year:      m.Year,
			Runtime:   m.Runtime,
			Rating:    m.Rating,
			Votes:     m.Votes,
			IMDbID:    m.IMDbID,
		}))
	}
	return items
}

// Entries converts the user's watches into activity entries relative to now.
func (u *User) Entries(now time.Time) []recommend.ActivityEntry {
	entries := make([]recommend.ActivityEntry, 0, len(u.Activity))
	for _, w := range u.Activity {
		at := w.WatchedAt
		if at.IsZero() {
			at = now.AddDate(0, 0, -w.DaysAgo)
		}
		entries = append(entries, recommend.ActivityEntry{
			UserID:    u.ID,
			ItemID:    w.Movie,
			WatchedAt: at.UTC(),
			Progress:  w.Progress,
			Duration:  w.Duration,
		})
	}
	return entries
}

// Apply writes the fixture through w. Users are written before their
// activity so stores that key activity by user see the user first.
func Apply(ctx context.Context, w Writer, f *Fixture, now time.Time) (Stats, error) {
	var stats Stats

	items := f.Items()
	if len(items) > 0 {
		if err := w.PutItems(ctx, items); err != nil {
			return stats, fmt.Errorf("seed movies: %w", err)
		}
	}
	stats.Movies = len(items)

	for i := range f.Users {
		u := &f.Users[i]
		if err := w.PutUser(ctx, u.ID, recommend.NormalizeTags(u.FavoriteGenres), u.Watchlist); err != nil {
			return stats, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
		stats.Users++

		entries := u.Entries(now)
		if len(entries) == 0 {
			continue
		}
		if err := w.PutActivity(ctx, entries); err != nil {
			return stats, fmt.Errorf("seed activity for %s: %w", u.ID, err)
		}
		stats.Activity += len(entries)
	}

	return stats, nil
}
