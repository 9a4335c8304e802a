// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package database implements the catalog and activity stores on DuckDB.
//
// # Overview
//
// DB satisfies recommend.CatalogStore, recommend.ActivityStore and
// seed.Writer. Every item leaving the package passes through
// recommend.NormalizeItem, so the engine never sees untrimmed tags or
// out-of-range ratings.
//
// # Files
//
//   - database.go: connection lifecycle (open, pool tuning, checkpoint, close)
//   - database_schema.go: table and index creation
//   - catalog.go: movie reads (GetItem, QueryItems)
//   - activity.go: user, watchlist, preference and activity reads
//   - writer.go: seed writes inside transactions
//   - errors.go: resource cleanup helpers
//
// # Storage Format
//
// Genres, cast, directors and favorite genres are VARCHAR[] list columns,
// bound from Go slices and scanned with duckdb.Composite. Cast order is
// billing order and is preserved. The genre filter uses list_has_any. Activity rows have no
// uniqueness constraint: repeated watches of the same movie are separate
// rows and count separately everywhere.
//
// Timestamps are stored as TIMESTAMP in UTC.
//
// # Thread Safety
//
// DB is safe for concurrent use; database/sql pools the connections.
package database
