// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an optional
// config file and environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Database  DatabaseConfig  `koanf:"database"`
	Badger    BadgerConfig    `koanf:"badger"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development" or "production"
}

// SecurityConfig holds authentication and request limiting settings.
//
// Environment Variables:
//   - JWT_SECRET: HMAC secret for bearer tokens (required, 32+ characters)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: per-IP limit (default: 100 per 1m)
//   - DISABLE_RATE_LIMIT: turn off both limiters
//   - USER_RATE_LIMIT / USER_RATE_BURST: per-user token bucket on authenticated routes
//   - CORS_ORIGINS: comma-separated allowed origins
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenIssuer       string        `koanf:"token_issuer"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	UserRateLimit     float64       `koanf:"user_rate_limit"` // tokens per second
	UserRateBurst     int           `koanf:"user_rate_burst"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StoreConfig selects the catalog/activity backend.
type StoreConfig struct {
	// Backend is "duckdb" or "badger".
	Backend string `koanf:"backend"`

	// SeedFile is an optional YAML fixture loaded at startup.
	SeedFile string `koanf:"seed_file"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker wrapped around store reads.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"` // allowed while half-open
	Interval     time.Duration `koanf:"interval"`     // closed-state counter reset
	Timeout      time.Duration `koanf:"timeout"`      // open-state duration
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU
}

// BadgerConfig holds BadgerDB settings
type BadgerConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// CacheConfig selects the response cache for similar and trending results.
type CacheConfig struct {
	// Backend is "memory", "redis" or "none".
	Backend       string        `koanf:"backend"`
	TTL           time.Duration `koanf:"ttl"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	KeyPrefix     string        `koanf:"key_prefix"`
}

// Enabled reports whether any response cache is configured.
func (c CacheConfig) Enabled() bool {
	return c.Backend != "" && c.Backend != "none"
}

// RecommendConfig holds recommendation engine settings. Keys are flat so they
// map one-to-one onto environment variables.
type RecommendConfig struct {
	WatchedWeight    float64 `koanf:"watched_weight"`
	WatchlistWeight  float64 `koanf:"watchlist_weight"`
	PreferenceWeight float64 `koanf:"preference_weight"`
	TopGenres        int     `koanf:"top_genres"`

	PersonalizedMinRating float64 `koanf:"personalized_min_rating"`
	PersonalizedLimit     int     `koanf:"personalized_limit"`
	TopPicksMinRating     float64 `koanf:"top_picks_min_rating"`
	TopPicksLimit         int     `koanf:"top_picks_limit"`

	SimilarMinRating float64 `koanf:"similar_min_rating"`
	SimilarLimit     int     `koanf:"similar_limit"`
	RatingSlack      float64 `koanf:"rating_slack"`
	BecauseLimit     int     `koanf:"because_limit"`
	CastDepth        int     `koanf:"cast_depth"`

	TrendingWindow   time.Duration `koanf:"trending_window"`
	TrendingLimit    int           `koanf:"trending_limit"`
	TrendingMaxLimit int           `koanf:"trending_max_limit"`

	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// EngineConfig converts the loaded settings into the engine's configuration.
func (r RecommendConfig) EngineConfig(cache CacheConfig) *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Weights = recommend.SignalWeights{
		Watched:    r.WatchedWeight,
		Watchlist:  r.WatchlistWeight,
		Preference: r.PreferenceWeight,
	}
	cfg.TopGenres = r.TopGenres
	cfg.Personalized = recommend.CandidateConfig{MinRating: r.PersonalizedMinRating, Limit: r.PersonalizedLimit}
	cfg.TopPicks = recommend.CandidateConfig{MinRating: r.TopPicksMinRating, Limit: r.TopPicksLimit}
	cfg.Similar = recommend.SimilarConfig{MinRating: r.SimilarMinRating, Limit: r.SimilarLimit, CastDepth: r.CastDepth}
	cfg.BecauseYouWatched = recommend.BecauseYouWatchedConfig{RatingSlack: r.RatingSlack, Limit: r.BecauseLimit, CastDepth: r.CastDepth}
	cfg.Trending.Window = r.TrendingWindow
	cfg.Trending.DefaultLimit = r.TrendingLimit
	cfg.Trending.MaxLimit = r.TrendingMaxLimit
	cfg.Cache = recommend.CacheConfig{Enabled: cache.Enabled(), TTL: cache.TTL}
	cfg.RequestTimeout = r.RequestTimeout
	return cfg
}

// Load reads configuration in layers:
//
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
