// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	duckdb "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/marquee/internal/recommend"
)

// requireUser returns recommend.ErrNotFound when the user does not exist.
func (db *DB) requireUser(ctx context.Context, userID string) error {
	var exists bool
	err := db.conn.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", userID, err)
	}
	if !exists {
		return fmt.Errorf("user %s: %w", userID, recommend.ErrNotFound)
	}
	return nil
}

// GetUserActivity returns the user's watch history, oldest first.
func (db *DB) GetUserActivity(ctx context.Context, userID string) ([]recommend.ActivityEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := db.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	return db.queryActivity(ctx, `
		SELECT user_id, movie_id, watched_at, progress, duration
		FROM activity
		WHERE user_id = ?
		ORDER BY watched_at, movie_id`, userID)
}

// ListActivity returns activity across all users since the given time.
// The zero time returns everything.
func (db *DB) ListActivity(ctx context.Context, since time.Time) ([]recommend.ActivityEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if since.IsZero() {
		return db.queryActivity(ctx, `
			SELECT user_id, movie_id, watched_at, progress, duration
			FROM activity
			ORDER BY watched_at, user_id, movie_id`)
	}
	return db.queryActivity(ctx, `
		SELECT user_id, movie_id, watched_at, progress, duration
		FROM activity
		WHERE watched_at >= ?
		ORDER BY watched_at, user_id, movie_id`, since.UTC())
}

func (db *DB) queryActivity(ctx context.Context, query string, args ...any) ([]recommend.ActivityEntry, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var entries []recommend.ActivityEntry
	for rows.Next() {
		var e recommend.ActivityEntry
		if err := rows.Scan(&e.UserID, &e.ItemID, &e.WatchedAt, &e.Progress, &e.Duration); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.WatchedAt = e.WatchedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return entries, nil
}

// GetWatchlist returns the ids on the user's watchlist in the order they were added.
func (db *DB) GetWatchlist(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := db.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT movie_id FROM watchlist WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}
	return ids, nil
}

// GetPreferences returns the user's declared favorite genres.
func (db *DB) GetPreferences(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var genres duckdb.Composite[[]string]
	err := db.conn.QueryRowContext(ctx, `SELECT favorite_genres FROM users WHERE id = ?`, userID).Scan(&genres)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences for %s: %w", userID, err)
	}
	return recommend.NormalizeTags(genres.Get()), nil
}
