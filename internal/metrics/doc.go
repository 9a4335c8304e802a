// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
are exposed at /metrics by the API router.

# Available Metrics

Store Metrics:
  - store_query_duration_seconds: Store read latency (histogram)
    Labels: backend (duckdb, badger), operation
  - store_query_errors_total: Failed store reads (counter)
    Labels: backend, operation, error_type (timeout, canceled, other)

API Metrics:
  - api_requests_total: Requests served (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rejections (counter)
    Labels: limiter (ip, user)

Recommendation Metrics:
  - recommend_requests_total: Engine calls (counter)
    Labels: mode, outcome (ok, not_found, unauthenticated, invalid, error)
  - recommend_duration_seconds: Engine latency (histogram)
    Labels: mode
  - recommend_fallbacks_total: Popularity fallbacks served (counter)
    Labels: mode
  - recommend_trending_dropped_items_total: Trending aggregates whose movie is gone (counter)

Cache Metrics:
  - cache_hits_total, cache_misses_total (counter)
    Labels: cache_type

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total: Labels name, from_state, to_state

# Engine Integration

EngineObserver implements recommend.Observer:

	engine, err := recommend.NewEngine(cfg, catalog, activity, logger,
	    recommend.WithObserver(metrics.EngineObserver{}))

# Example PromQL

	# Fallback share per mode
	sum by (mode) (rate(recommend_fallbacks_total[5m]))
	  / sum by (mode) (rate(recommend_requests_total{outcome="ok"}[5m]))

	# Response cache hit rate
	rate(cache_hits_total{cache_type="recommend_response"}[5m])
	  / (rate(cache_hits_total{cache_type="recommend_response"}[5m])
	     + rate(cache_misses_total{cache_type="recommend_response"}[5m]))

# Cardinality

Labels never carry user or movie ids. Endpoint labels use the chi route
pattern, not the raw path.
*/
package metrics
