// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/seed"
)

var (
	_ recommend.CatalogStore  = (*Store)(nil)
	_ recommend.ActivityStore = (*Store)(nil)
	_ seed.Writer             = (*Store)(nil)
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	s, err := New(db)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	items := []recommend.Item{
		{ID: "m2", Title: "Thief", Genres: []string{"Crime"}, Rating: 7.4},
		{ID: "m1", Title: "Heat", Genres: []string{" Crime", "Drama", ""}, Cast: []string{"Al Pacino", "Robert De Niro"}, Rating: 8.3},
		{ID: "m3", Title: "Up", Genres: []string{"Animation"}, Rating: 11},
	}
	if err := s.PutItems(ctx, items); err != nil {
		t.Fatalf("PutItems() error = %v", err)
	}
	if err := s.PutUser(ctx, "alice", []string{"Crime", ""}, []string{"m3", "m2", "m3"}); err != nil {
		t.Fatalf("PutUser() error = %v", err)
	}
	if err := s.PutUser(ctx, "bob", nil, nil); err != nil {
		t.Fatalf("PutUser() error = %v", err)
	}
	activity := []recommend.ActivityEntry{
		{UserID: "alice", ItemID: "m1", WatchedAt: now.AddDate(0, 0, -1), Progress: 10, Duration: 100},
		{UserID: "alice", ItemID: "m1", WatchedAt: now.AddDate(0, 0, -2), Progress: 95, Duration: 100},
		{UserID: "bob", ItemID: "m3", WatchedAt: now.AddDate(0, 0, -10), Progress: 50, Duration: 100},
	}
	if err := s.PutActivity(ctx, activity); err != nil {
		t.Fatalf("PutActivity() error = %v", err)
	}
	return s
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(config.BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(config.BadgerConfig{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.PutItems(context.Background(), []recommend.Item{{ID: "m1", Title: "Heat"}}); err != nil {
		t.Fatalf("PutItems() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(config.BadgerConfig{Path: dir})
	if err != nil {
		t.Fatalf("Open(reopen) error = %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetItem(context.Background(), "m1"); err != nil {
		t.Errorf("GetItem() after reopen error = %v", err)
	}
}

func TestGetItem(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	it, err := s.GetItem(ctx, "m1")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Crime", "Drama"}, it.Genres); diff != "" {
		t.Errorf("Genres mismatch (-want +got):\n%s", diff)
	}

	up, err := s.GetItem(ctx, "m3")
	if err != nil {
		t.Fatalf("GetItem(m3) error = %v", err)
	}
	if up.Rating != 10 {
		t.Errorf("Rating = %v, want clamped 10", up.Rating)
	}

	if _, err := s.GetItem(ctx, "nope"); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("GetItem(nope) error = %v, want ErrNotFound", err)
	}
}

func TestQueryItems(t *testing.T) {
	s := setupTestStore(t)

	tests := []struct {
		name  string
		query recommend.ItemQuery
		want  []string
	}{
		{"everything sorted by id", recommend.ItemQuery{}, []string{"m1", "m2", "m3"}},
		{"rating floor", recommend.ItemQuery{MinRating: 8}, []string{"m1", "m3"}},
		{"genre", recommend.ItemQuery{Genres: []string{"Crime"}}, []string{"m1", "m2"}},
		{"ids with duplicates", recommend.ItemQuery{IDs: []string{"m3", "m1", "m3", "zz"}}, []string{"m1", "m3"}},
		{"ids and genre", recommend.ItemQuery{IDs: []string{"m3", "m1"}, Genres: []string{"Drama"}}, []string{"m1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := s.QueryItems(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("QueryItems() error = %v", err)
			}
			var got []string
			for _, it := range items {
				got = append(got, it.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("QueryItems() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUserReads(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	activity, err := s.GetUserActivity(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserActivity() error = %v", err)
	}
	if len(activity) != 2 {
		t.Fatalf("GetUserActivity() = %d entries, want 2", len(activity))
	}
	if !activity[0].WatchedAt.Equal(now.AddDate(0, 0, -2)) {
		t.Errorf("activity not oldest first: %v", activity[0].WatchedAt)
	}

	wl, err := s.GetWatchlist(ctx, "alice")
	if err != nil {
		t.Fatalf("GetWatchlist() error = %v", err)
	}
	if diff := cmp.Diff([]string{"m3", "m2"}, wl); diff != "" {
		t.Errorf("GetWatchlist() mismatch (-want +got):\n%s", diff)
	}

	prefs, err := s.GetPreferences(ctx, "alice")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Crime"}, prefs); diff != "" {
		t.Errorf("GetPreferences() mismatch (-want +got):\n%s", diff)
	}

	bobActivity, err := s.GetUserActivity(ctx, "bob")
	if err != nil || len(bobActivity) != 1 {
		t.Errorf("GetUserActivity(bob) = %v, %v, want 1 entry", bobActivity, err)
	}

	for name, read := range map[string]func() error{
		"activity":    func() error { _, err := s.GetUserActivity(ctx, "carol"); return err },
		"watchlist":   func() error { _, err := s.GetWatchlist(ctx, "carol"); return err },
		"preferences": func() error { _, err := s.GetPreferences(ctx, "carol"); return err },
	} {
		if err := read(); !errors.Is(err, recommend.ErrNotFound) {
			t.Errorf("%s(carol) error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestListActivity(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	all, err := s.ListActivity(ctx, time.Time{})
	if err != nil {
		t.Fatalf("ListActivity(zero) error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListActivity(zero) = %d, want 3", len(all))
	}
	if all[0].UserID != "bob" {
		t.Errorf("ListActivity(zero)[0] = %s, want bob (oldest)", all[0].UserID)
	}

	recent, err := s.ListActivity(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("ListActivity(7d) error = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("ListActivity(7d) = %d, want 2", len(recent))
	}
}

func TestGetUserActivity_IDsSharingAPrefix(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "a:x", "a:"} {
		if err := s.PutUser(ctx, id, nil, nil); err != nil {
			t.Fatalf("PutUser(%q) error = %v", id, err)
		}
	}
	err := s.PutActivity(ctx, []recommend.ActivityEntry{
		{UserID: "a:x", ItemID: "m1", WatchedAt: now, Progress: 1, Duration: 2},
		{UserID: "a:", ItemID: "m2", WatchedAt: now, Progress: 1, Duration: 2},
	})
	if err != nil {
		t.Fatalf("PutActivity() error = %v", err)
	}

	tests := []struct {
		user string
		want []string
	}{
		{"a", nil},
		{"a:x", []string{"m1"}},
		{"a:", []string{"m2"}},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			entries, err := s.GetUserActivity(ctx, tt.user)
			if err != nil {
				t.Fatalf("GetUserActivity(%q) error = %v", tt.user, err)
			}
			var got []string
			for _, e := range entries {
				if e.UserID != tt.user {
					t.Errorf("GetUserActivity(%q) returned entry of %q", tt.user, e.UserID)
				}
				got = append(got, e.ItemID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("GetUserActivity(%q) mismatch (-want +got):\n%s", tt.user, diff)
			}
		})
	}
}

func TestTimeKey_Ordering(t *testing.T) {
	times := []time.Time{
		time.Date(1901, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1969, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Unix(0, 0),
		time.Unix(0, 1),
		now,
	}
	for i := 1; i < len(times); i++ {
		prev, cur := timeKey(times[i-1]), timeKey(times[i])
		if len(prev) != len(cur) {
			t.Errorf("timeKey widths differ: %q vs %q", prev, cur)
		}
		if prev >= cur {
			t.Errorf("timeKey(%v) = %q, not before timeKey(%v) = %q", times[i-1], prev, times[i], cur)
		}
	}
}

func TestListActivity_BeforeEpoch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	old := time.Date(1965, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := s.PutActivity(ctx, []recommend.ActivityEntry{{UserID: "bob", ItemID: "m2", WatchedAt: old, Progress: 1, Duration: 1}}); err != nil {
		t.Fatalf("PutActivity() error = %v", err)
	}

	all, err := s.ListActivity(ctx, time.Time{})
	if err != nil {
		t.Fatalf("ListActivity(zero) error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("ListActivity(zero) = %d entries, want 4", len(all))
	}
	if !all[0].WatchedAt.Equal(old) {
		t.Errorf("ListActivity(zero)[0].WatchedAt = %v, want %v", all[0].WatchedAt, old)
	}

	recent, err := s.ListActivity(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("ListActivity(7d) error = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("ListActivity(7d) = %d, want 2 (1965 entry stays outside the window)", len(recent))
	}

	history, err := s.GetUserActivity(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserActivity(bob) error = %v", err)
	}
	if len(history) != 2 || history[0].ItemID != "m2" {
		t.Errorf("GetUserActivity(bob) = %v, want the 1965 watch first", history)
	}
}

func TestSeedApply(t *testing.T) {
	s, err := Open(config.BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	f := &seed.Fixture{
		Movies: []seed.Movie{{ID: "m1", Title: "Heat", Genres: []string{"Crime"}, Rating: 8.3}},
		Users: []seed.User{{
			ID:       "alice",
			Activity: []seed.Watch{{Movie: "m1", DaysAgo: 1, Progress: 90, Duration: 100}},
		}},
	}
	stats, err := seed.Apply(context.Background(), s, f, now)
	if err != nil {
		t.Fatalf("seed.Apply() error = %v", err)
	}
	if stats.Activity != 1 {
		t.Errorf("stats.Activity = %d, want 1", stats.Activity)
	}

	activity, err := s.GetUserActivity(context.Background(), "alice")
	if err != nil || len(activity) != 1 || !activity[0].Completed() {
		t.Errorf("GetUserActivity() = %v, %v, want one completed entry", activity, err)
	}
}
