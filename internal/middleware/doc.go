// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides HTTP middleware components for the API router.

Key Components:

  - RequestID: request tracking shared with the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge
  - AccessLog: one zerolog line per request

All middleware uses the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

Metrics are labelled with the chi route pattern, so RequestID and the
metrics middleware must be mounted on the router, not wrapped around it.
*/
package middleware
