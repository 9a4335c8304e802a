// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package config provides centralized configuration management for Marquee.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (config.yaml, or the path in CONFIG_PATH)
 3. Environment variables, mapped explicitly in envTransformFunc

Unknown environment variables are ignored so unrelated process settings never
leak into the configuration.

# Configuration Structure

  - ServerConfig: HTTP listener (host, port, timeout, environment)
  - SecurityConfig: JWT secret, rate limits, CORS
  - LoggingConfig: zerolog level and format
  - StoreConfig: backend selection (duckdb or badger), seed file, circuit breaker
  - DatabaseConfig: DuckDB file path and tuning
  - BadgerConfig: Badger directory
  - CacheConfig: response cache backend (memory, redis or none)
  - RecommendConfig: engine weights, rating floors and limits

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg := cfg.Recommend.EngineConfig(cfg.Cache)

# Thread Safety

Config is immutable after Load() and safe for concurrent reads.
*/
package config
