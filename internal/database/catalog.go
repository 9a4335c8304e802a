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
	"strings"

	duckdb "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/marquee/internal/recommend"
)

const movieColumns = `id, title, plot, poster, rated, genres, cast_members, directors,
	year, runtime, rating, votes, imdb_id`

type rowScanner interface {
	Scan(dest ...any) error
}

// tagList is the bind value for a VARCHAR[] column. The driver needs a
// non-nil slice to build an empty list.
func tagList(tags []string) []string {
	if tags = recommend.NormalizeTags(tags); tags == nil {
		return []string{}
	}
	return tags
}

func scanMovie(row rowScanner) (recommend.Item, error) {
	var (
		it                      recommend.Item
		genres, cast, directors duckdb.Composite[[]string]
		year, runtime, votes    int
	)
	if err := row.Scan(&it.ID, &it.Title, &it.Plot, &it.Poster, &it.Rated,
		&genres, &cast, &directors, &year, &runtime, &it.Rating, &votes, &it.IMDbID); err != nil {
		return recommend.Item{}, err
	}
	it.Genres = genres.Get()
	it.Cast = cast.Get()
	it.Directors = directors.Get()
	it.Year = year
	it.Runtime = runtime
	it.Votes = votes
	return recommend.NormalizeItem(it), nil
}

// GetItem returns a single movie or recommend.ErrNotFound.
func (db *DB) GetItem(ctx context.Context, id string) (*recommend.Item, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	it, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("movie %s: %w", id, recommend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get movie %s: %w", id, err)
	}
	return &it, nil
}

// QueryItems returns every movie matching q. Tags are normalized on write,
// so the genre filter compares stored list elements directly.
func (db *DB) QueryItems(ctx context.Context, q recommend.ItemQuery) ([]recommend.Item, error) {
	if len(q.Genres) > 0 && len(recommend.NormalizeTags(q.Genres)) == 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query, args := buildItemQuery(q)
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var items []recommend.Item
	for rows.Next() {
		it, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return items, nil
}

// buildItemQuery renders the SQL side of an ItemQuery.
func buildItemQuery(q recommend.ItemQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	if q.MinRating > 0 {
		// rating is clamped on read, so a stored value above 10 still counts as 10
		where = append(where, "LEAST(rating, 10) >= ?")
		args = append(args, q.MinRating)
	}
	if genres := recommend.NormalizeTags(q.Genres); len(genres) > 0 {
		where = append(where, "list_has_any(genres, ?::VARCHAR[])")
		args = append(args, genres)
	}
	if len(q.IDs) > 0 {
		placeholders := make([]string, len(q.IDs))
		for i, id := range q.IDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		where = append(where, "id IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT ` + movieColumns + ` FROM movies`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY id", args
}
