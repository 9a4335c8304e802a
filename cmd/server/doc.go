// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package main is the entry point for the Marquee recommendation server.

Marquee serves personalized, similar, because-you-watched, top-pick and
trending movie recommendations over a small JSON API backed by DuckDB or
BadgerDB.

# Application Architecture

	RootSupervisor ("marquee")
	├── BackgroundSupervisor ("background-layer")
	│   ├── TrendingWarmer (when a response cache is configured)
	│   └── UptimeService
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Store: DuckDB or BadgerDB, wrapped with metrics and a circuit breaker
 4. Seed: optional YAML fixture applied to the store
 5. Response cache: in-process TTL map or Redis
 6. Engine: recommendation modes with Prometheus observer
 7. Authentication: JWT bearer tokens and per-user rate limiting
 8. Supervisor Tree: Suture v4 process supervision
 9. HTTP Server: chi router with middleware stack

# Configuration

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	PORT=3857
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	JWT_SECRET=<32+ chars>       # required
	STORE_BACKEND=duckdb         # duckdb or badger
	DUCKDB_PATH=/data/marquee.duckdb
	BADGER_PATH=/data/marquee-kv
	STORE_SEED_FILE=             # optional YAML fixture
	CACHE_BACKEND=memory         # memory, redis or none
	REDIS_ADDR=127.0.0.1:6379

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. The HTTP server stops
accepting connections and drains in-flight requests for up to 10 seconds,
then the store and cache are closed.

# Example Usage

	export JWT_SECRET=$(openssl rand -base64 48)
	export STORE_BACKEND=badger BADGER_IN_MEMORY=true
	export STORE_SEED_FILE=./configs/seed.example.yaml
	./marquee

	TOKEN=$(./marquee-token -user alice)
	curl -H "Authorization: Bearer $TOKEN" localhost:3857/api/recommendations/personalized
*/
package main
