// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	redis "github.com/redis/go-redis/v9"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
)

// redisOpTimeout bounds a single cache round trip so a slow Redis never
// holds up a recommendation.
const redisOpTimeout = 250 * time.Millisecond

var (
	_ recommend.ResultCache = (*MemoryResponseCache)(nil)
	_ recommend.ResultCache = (*RedisResponseCache)(nil)
)

// MemoryResponseCache keeps engine responses in process memory.
// Cached responses are shared between callers and must not be modified.
type MemoryResponseCache struct {
	c *Cache
}

// NewMemoryResponseCache creates an in-process response cache.
func NewMemoryResponseCache(ttl time.Duration) *MemoryResponseCache {
	return &MemoryResponseCache{c: New(ttl)}
}

// Get implements recommend.ResultCache.
func (m *MemoryResponseCache) Get(_ context.Context, key string) (*recommend.Response, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	resp, ok := v.(*recommend.Response)
	return resp, ok
}

// Set implements recommend.ResultCache.
func (m *MemoryResponseCache) Set(_ context.Context, key string, resp *recommend.Response) {
	if resp == nil {
		return
	}
	m.c.Set(key, resp)
}

// Stats exposes the underlying counters.
func (m *MemoryResponseCache) Stats() Stats {
	return m.c.GetStats()
}

// Close stops the expiry sweeper.
func (m *MemoryResponseCache) Close() error {
	m.c.Close()
	return nil
}

// RedisResponseCache stores engine responses as JSON in Redis so replicas
// share trending and similar results. Any Redis error is logged and treated
// as a miss.
type RedisResponseCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisResponseCache wraps an existing client.
func NewRedisResponseCache(client *redis.Client, prefix string, ttl time.Duration) *RedisResponseCache {
	return &RedisResponseCache{client: client, prefix: prefix, ttl: ttl}
}

// Get implements recommend.ResultCache.
func (r *RedisResponseCache) Get(ctx context.Context, key string) (*recommend.Response, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Redis cache read failed")
		return nil, false
	}

	var resp recommend.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return nil, false
	}
	return &resp, true
}

// Set implements recommend.ResultCache.
func (r *RedisResponseCache) Set(ctx context.Context, key string, resp *recommend.Response) {
	if resp == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Redis cache write failed")
	}
}

// Ping checks connectivity.
func (r *RedisResponseCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *RedisResponseCache) Close() error {
	return r.client.Close()
}

// ResponseCache is a recommend.ResultCache that owns resources.
type ResponseCache interface {
	recommend.ResultCache
	Close() error
}

// Open builds the response cache selected by cfg. It returns nil when
// caching is disabled. A Redis backend that cannot be reached at startup
// is not an error; lookups fall through to the stores until it recovers.
func Open(ctx context.Context, cfg config.CacheConfig) (ResponseCache, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryResponseCache(cfg.TTL), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: 2 * time.Second,
		})
		rc := NewRedisResponseCache(client, cfg.KeyPrefix, cfg.TTL)
		if err := rc.Ping(ctx); err != nil {
			logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis cache unreachable at startup")
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
