package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/jonathan/resource-curator/internal/logger"
	"github.com/jonathan/resource-curator/internal/metrics"
)

// Cache stores search results by normalized query.
type Cache interface {
	Get(ctx context.Context, key string) ([]Result, bool, error)
	Set(ctx context.Context, key string, results []Result) error
}

// CacheKey normalizes a query for cache lookups.
func CacheKey(query string) string {
	return "search:" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// MemoryCache is an in-process LRU cache with per-entry expiry.
type MemoryCache struct {
	lru *expirable.LRU[string, []Result]
}

// NewMemoryCache creates a MemoryCache holding up to size entries for ttl.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []Result](size, nil, ttl)}
}

// Get returns the cached results for key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]Result, bool, error) {
	results, ok := c.lru.Get(key)
	return results, ok, nil
}

// Set stores results for key.
func (c *MemoryCache) Set(_ context.Context, key string, results []Result) error {
	c.lru.Add(key, results)
	return nil
}

// RedisCache stores JSON-encoded results in Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache from a redis:// URL.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached results for key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Result, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, err
	}
	return results, true, nil
}

// Set stores results for key with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, results []Result) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Ping checks the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedSearcher serves repeated queries from a cache. Cache failures are
// logged and fall through to the wrapped searcher. Errors and empty results
// are never cached.
type CachedSearcher struct {
	next  Searcher
	cache Cache
	log   *logger.Logger
}

// NewCachedSearcher wraps next with cache.
func NewCachedSearcher(next Searcher, cache Cache, log *logger.Logger) *CachedSearcher {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedSearcher{next: next, cache: cache, log: log}
}

// Search returns cached results when present, otherwise queries next.
func (c *CachedSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	key := CacheKey(query)

	results, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCache("error")
		c.log.Warn("search cache read failed", "query", query, "error", err)
	case ok:
		metrics.RecordCache("hit")
		return results, nil
	default:
		metrics.RecordCache("miss")
	}

	results, err = c.next.Search(ctx, query)
	if err != nil || len(results) == 0 {
		return results, err
	}

	if err := c.cache.Set(ctx, key, results); err != nil {
		c.log.Warn("search cache write failed", "query", query, "error", err)
	}
	return results, nil
}
