// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package cache provides the response caches used by the recommendation engine
for the similar and trending modes.

# Backends

  - memory: an in-process TTL map (Cache) behind MemoryResponseCache
  - redis: RedisResponseCache stores JSON-encoded responses under a key prefix
  - none: caching disabled; Open returns nil

Both backends implement recommend.ResultCache. A Redis failure is logged and
reported as a miss, so the engine recomputes from the stores.

# Keys

The engine builds the keys; this package only prefixes them for Redis:

	similar:<movieID>
	trending:<windowSeconds>:<limit>

# Usage

	rc, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
	    return err
	}
	if rc != nil {
	    defer rc.Close()
	    opts = append(opts, recommend.WithCache(rc))
	}

# Thread Safety

Cache uses a sync.RWMutex; lookups run concurrently and writes are exclusive.
Expired entries are removed on Get and by a background sweep once a minute.
*/
package cache
