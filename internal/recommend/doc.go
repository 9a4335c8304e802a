// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend turns per-user activity and catalog metadata into ranked
// movie suggestions.
//
// # Architecture
//
// Four leaf components do the ranking work. Each is a pure function over
// snapshots the engine fetched at the start of the request:
//
//   - ScoreGenres builds the weighted genre affinity of a user
//   - FilterCandidates applies exclusion and the rating floor, then orders
//   - MatchSimilar ranks items by genre, director or lead-cast overlap
//   - AggregateTrending groups watch activity per item inside a window
//
// The Engine composes them into five modes (personalized, similar, trending,
// because-you-watched, top-picks) and falls back to global popularity when a
// user carries no signal at all.
//
// # Determinism
//
// Every ordering has an explicit total sort key ending in the item
// identifier, so identical snapshots always produce identical output.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, catalog, activity, logger)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    Mode:   recommend.ModePersonalized,
//	    UserID: userID,
//	})
//
// # Thread Safety
//
// The engine holds no mutable per-request state and is safe for concurrent
// use. Errors from stores are never retried here; they surface as
// *StoreError and clients retry the whole (idempotent) request.
package recommend
