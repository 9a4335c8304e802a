// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"defaults with secret", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"missing secret", func(c *Config) { c.Security.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "short" }, "at least 32"},
		{"placeholder secret", func(c *Config) { c.Security.JWTSecret = "CHANGEME-" + testSecret }, "placeholder"},
		{"wildcard cors in production", func(c *Config) { c.Server.Environment = "production" }, "CORS_ORIGINS"},
		{"wildcard cors in development", func(c *Config) { c.Server.Environment = "development" }, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"unknown store", func(c *Config) { c.Store.Backend = "postgres" }, "STORE_BACKEND"},
		{"duckdb without path", func(c *Config) { c.Database.Path = "" }, "DUCKDB_PATH"},
		{"badger without path", func(c *Config) {
			c.Store.Backend = "badger"
			c.Badger.Path = ""
		}, "BADGER_PATH"},
		{"badger in memory without path", func(c *Config) {
			c.Store.Backend = "badger"
			c.Badger.Path = ""
			c.Badger.InMemory = true
		}, ""},
		{"breaker ratio above one", func(c *Config) { c.Store.Breaker.FailureRatio = 1.5 }, "BREAKER_FAILURE_RATIO"},
		{"breaker disabled ignores tuning", func(c *Config) {
			c.Store.Breaker.Enabled = false
			c.Store.Breaker.FailureRatio = 0
		}, ""},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "CACHE_BACKEND"},
		{"redis without addr", func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.RedisAddr = ""
		}, "REDIS_ADDR"},
		{"cache ttl zero", func(c *Config) { c.Cache.TTL = 0 }, "CACHE_TTL"},
		{"no cache ignores ttl", func(c *Config) {
			c.Cache.Backend = "none"
			c.Cache.TTL = 0
		}, ""},
		{"engine limit zero", func(c *Config) { c.Recommend.SimilarLimit = 0 }, "recommend"},
		{"user rate zero", func(c *Config) { c.Security.UserRateLimit = 0 }, "USER_RATE_LIMIT"},
		{"rate limits disabled", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
			c.Security.UserRateLimit = 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.errContains == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want containing %q", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestValidateRateLimits(t *testing.T) {
	tests := []struct {
		name     string
		requests int
		window   time.Duration
		wantErr  bool
	}{
		{"valid defaults", 100, time.Minute, false},
		{"valid minimum requests", 1, time.Minute, false},
		{"valid maximum requests", 100000, time.Minute, false},
		{"valid minimum window", 100, time.Second, false},
		{"valid maximum window", 100, time.Hour, false},
		{"invalid zero requests", 0, time.Minute, true},
		{"invalid too many requests", 100001, time.Minute, true},
		{"invalid short window", 100, 500 * time.Millisecond, true},
		{"invalid long window", 100, 2 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Security.RateLimitReqs = tt.requests
			cfg.Security.RateLimitWindow = tt.window

			err := cfg.validateRateLimits()
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRateLimits() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	tests := []struct {
		env        string
		production bool
		dev        bool
	}{
		{"", false, true},
		{"development", false, true},
		{"DEV", false, true},
		{"production", true, false},
		{"Prod", true, false},
		{"staging", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Environment: tt.env}}
			if got := cfg.IsProduction(); got != tt.production {
				t.Errorf("IsProduction() = %v, want %v", got, tt.production)
			}
			if got := cfg.IsDevelopment(); got != tt.dev {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.dev)
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Recommend.CastDepth = 5
	cfg.Cache.Backend = "none"

	engine := cfg.Recommend.EngineConfig(cfg.Cache)
	if engine.Similar.CastDepth != 5 || engine.BecauseYouWatched.CastDepth != 5 {
		t.Errorf("CastDepth = %d/%d, want 5/5", engine.Similar.CastDepth, engine.BecauseYouWatched.CastDepth)
	}
	if engine.Cache.Enabled {
		t.Errorf("Cache.Enabled = true, want false for backend none")
	}
}
