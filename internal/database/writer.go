// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/marquee/internal/recommend"
)

// PutItems inserts or replaces movies in one transaction.
func (db *DB) PutItems(ctx context.Context, items []recommend.Item) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO movies (`+movieColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		rollbackQuietly(tx)
		return fmt.Errorf("prepare movie insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i := range items {
		it := recommend.NormalizeItem(items[i])
		if it.ID == "" {
			rollbackQuietly(tx)
			return fmt.Errorf("movie at index %d has no id", i)
		}
		if _, err := stmt.ExecContext(ctx, it.ID, it.Title, it.Plot, it.Poster, it.Rated,
			tagList(it.Genres), tagList(it.Cast), tagList(it.Directors),
			it.Year, it.Runtime, it.Rating, it.Votes, it.IMDbID); err != nil {
			rollbackQuietly(tx)
			return fmt.Errorf("insert movie %s: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit movies: %w", err)
	}
	return nil
}

// PutUser creates or replaces a user with its preferences and watchlist.
// The previous watchlist is replaced wholesale.
func (db *DB) PutUser(ctx context.Context, userID string, preferences, watchlist []string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	// The stale watchlist is removed in its own statement so the inserts
	// below never see a pending delete of the same key.
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM watchlist WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear watchlist for %s: %w", userID, err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO users (id, favorite_genres) VALUES (?, ?)`,
		userID, tagList(preferences)); err != nil {
		rollbackQuietly(tx)
		return fmt.Errorf("insert user %s: %w", userID, err)
	}

	for pos, movieID := range watchlist {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO watchlist (user_id, movie_id, position) VALUES (?, ?, ?)`,
			userID, movieID, pos); err != nil {
			rollbackQuietly(tx)
			return fmt.Errorf("insert watchlist entry %s/%s: %w", userID, movieID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user %s: %w", userID, err)
	}
	return nil
}

// PutActivity appends watch events. Existing rows are never replaced.
func (db *DB) PutActivity(ctx context.Context, entries []recommend.ActivityEntry) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO activity (user_id, movie_id, watched_at, progress, duration) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		rollbackQuietly(tx)
		return fmt.Errorf("prepare activity insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.UserID, e.ItemID, e.WatchedAt.UTC(), e.Progress, e.Duration); err != nil {
			rollbackQuietly(tx)
			return fmt.Errorf("insert activity %s/%s: %w", e.UserID, e.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activity: %w", err)
	}
	return nil
}
