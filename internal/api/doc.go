// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api provides the HTTP REST API layer for Marquee.

Routes:

	GET /api/recommendations/personalized                  (bearer token)
	GET /api/recommendations/top-picks                     (bearer token)
	GET /api/recommendations/because-you-watched/{itemId}  (bearer token)
	GET /api/recommendations/similar/{itemId}
	GET /api/recommendations/trending?limit=1..50&window=all
	GET /api/movies/trending/top10
	GET /api/health/live
	GET /api/health/ready
	GET /metrics
	GET /swagger/*                                         (Swagger UI, doc.json)

Every JSON body carries "success". Failures look like

	{"success": false, "message": "Movie not found"}

with 400 for a malformed query or id, 401 for a missing or invalid token, 404
for an unknown user or movie, 429 when a rate limit trips and 500 for any
store failure, including reads rejected by the open circuit breaker.

Middleware Stack (outermost first):

	RequestID -> Recoverer -> AccessLog -> PrometheusMetrics -> CORS ->
	SecurityHeaders -> Compress -> [per-group rate limit] -> [RequireUser -> LimitUser]

Per-IP limits use go-chi/httprate keyed by auth.Middleware.ClientIP, so
X-Forwarded-For is only honoured from trusted proxies.
*/
package api
