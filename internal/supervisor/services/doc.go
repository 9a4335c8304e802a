// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package services provides suture.Service wrappers for Marquee components.

  - HTTPServerService: runs the API server, shuts it down gracefully on cancel
  - TrendingWarmer: recomputes the top 10 ahead of the response cache TTL
  - UptimeService: updates the app_uptime_seconds gauge

Each Serve blocks until its context is canceled and returns ctx.Err() then,
which suture treats as a normal stop. Any other returned error triggers a
restart under the supervisor's backoff policy.
*/
package services
