// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := defaultRecommend()
	return &Config{
		Server: ServerConfig{
			Port:        3857,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			TokenIssuer:       "marquee",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			UserRateLimit:     10,
			UserRateBurst:     20,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Store: StoreConfig{
			Backend:  "duckdb",
			SeedFile: "",
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Database: DatabaseConfig{
			Path:      "/data/marquee.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Badger: BadgerConfig{
			Path:     "/data/marquee-kv",
			InMemory: false,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			TTL:       time.Minute,
			RedisAddr: "127.0.0.1:6379",
			RedisDB:   0,
			KeyPrefix: "marquee:",
		},
		Recommend: engine,
	}
}

// defaultRecommend mirrors recommend.DefaultConfig in flat form.
func defaultRecommend() RecommendConfig {
	return RecommendConfig{
		WatchedWeight:         2,
		WatchlistWeight:       1,
		PreferenceWeight:      3,
		TopGenres:             3,
		PersonalizedMinRating: 7.0,
		PersonalizedLimit:     20,
		TopPicksMinRating:     8.0,
		TopPicksLimit:         15,
		SimilarMinRating:      6.0,
		SimilarLimit:          12,
		RatingSlack:           1.0,
		BecauseLimit:          10,
		CastDepth:             3,
		TrendingWindow:        7 * 24 * time.Hour,
		TrendingLimit:         10,
		TrendingMaxLimit:      50,
		RequestTimeout:        10 * time.Second,
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first default path
// that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.token_issuer",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"user_rate_limit":     "security.user_rate_limit",
	"user_rate_burst":     "security.user_rate_burst",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Store
	"store_backend":         "store.backend",
	"store_seed_file":       "store.seed_file",
	"breaker_enabled":       "store.breaker.enabled",
	"breaker_max_requests":  "store.breaker.max_requests",
	"breaker_interval":      "store.breaker.interval",
	"breaker_timeout":       "store.breaker.timeout",
	"breaker_min_requests":  "store.breaker.min_requests",
	"breaker_failure_ratio": "store.breaker.failure_ratio",

	// DuckDB
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Badger
	"badger_path":      "badger.path",
	"badger_in_memory": "badger.in_memory",

	// Response cache
	"cache_backend":    "cache.backend",
	"cache_ttl":        "cache.ttl",
	"redis_addr":       "cache.redis_addr",
	"redis_password":   "cache.redis_password",
	"redis_db":         "cache.redis_db",
	"cache_key_prefix": "cache.key_prefix",

	// Recommendation engine
	"recommend_watched_weight":          "recommend.watched_weight",
	"recommend_watchlist_weight":        "recommend.watchlist_weight",
	"recommend_preference_weight":       "recommend.preference_weight",
	"recommend_top_genres":              "recommend.top_genres",
	"recommend_personalized_min_rating": "recommend.personalized_min_rating",
	"recommend_personalized_limit":      "recommend.personalized_limit",
	"recommend_top_picks_min_rating":    "recommend.top_picks_min_rating",
	"recommend_top_picks_limit":         "recommend.top_picks_limit",
	"recommend_similar_min_rating":      "recommend.similar_min_rating",
	"recommend_similar_limit":           "recommend.similar_limit",
	"recommend_rating_slack":            "recommend.rating_slack",
	"recommend_because_limit":           "recommend.because_limit",
	"recommend_cast_depth":              "recommend.cast_depth",
	"recommend_trending_window":         "recommend.trending_window",
	"recommend_trending_limit":          "recommend.trending_limit",
	"recommend_trending_max_limit":      "recommend.trending_max_limit",
	"recommend_request_timeout":         "recommend.request_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return "" and are skipped so unrelated environment variables
// never pollute the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
