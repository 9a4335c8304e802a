// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
database_schema.go - Database Schema Management

Tables:
  - movies: catalog entries; genres, cast and directors as VARCHAR[] lists
  - users: known accounts with their declared favorite genres
  - watchlist: (user, movie) pairs the user saved
  - activity: one row per watch event, repeated watches allowed

Index Strategy:
Indexes cover the two activity access paths: by user for profile loads and
by watched_at for the trending window scan.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the tables and indexes if they do not exist yet.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			plot TEXT NOT NULL DEFAULT '',
			poster TEXT NOT NULL DEFAULT '',
			rated TEXT NOT NULL DEFAULT '',
			genres VARCHAR[] NOT NULL DEFAULT [],
			cast_members VARCHAR[] NOT NULL DEFAULT [],
			directors VARCHAR[] NOT NULL DEFAULT [],
			year INTEGER NOT NULL DEFAULT 0,
			runtime INTEGER NOT NULL DEFAULT 0,
			rating DOUBLE NOT NULL DEFAULT 0,
			votes INTEGER NOT NULL DEFAULT 0,
			imdb_id TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			favorite_genres VARCHAR[] NOT NULL DEFAULT []
		)`,

		`CREATE TABLE IF NOT EXISTS watchlist (
			user_id TEXT NOT NULL,
			movie_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (user_id, movie_id)
		)`,

		`CREATE TABLE IF NOT EXISTS activity (
			user_id TEXT NOT NULL,
			movie_id TEXT NOT NULL,
			watched_at TIMESTAMP NOT NULL,
			progress DOUBLE NOT NULL DEFAULT 0,
			duration DOUBLE NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activity_user ON activity(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_watched_at ON activity(watched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_rating ON movies(rating)`,
	}
}
