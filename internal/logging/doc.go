// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package logging provides centralized zerolog-based structured logging for Marquee.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//
//	logging.Info().Str("store", "duckdb").Msg("Store initialized")
//	logging.Error().Err(err).Msg("Failed to apply seed fixture")
//
// Always terminate chains with .Msg() or .Send(); an unterminated event is
// never written.
//
// # Configuration
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json or console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Request-Scoped Logging
//
// The request id middleware stores the id on the request context, and the
// auth middleware stores a logger carrying user_id. Handlers and the engine
// log through Ctx so both show up on every entry:
//
//	logging.CtxWarn(ctx).Err(err).Stringer("mode", req.Mode).Msg("Falling back to popular movies")
//
// # slog Adapter
//
// sutureslog needs a *slog.Logger. NewSlogLogger returns one that writes
// through the global zerolog logger, so supervisor restarts land in the same
// JSON stream as everything else.
//
// # Testing
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
package logging
