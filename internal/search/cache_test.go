package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSearcher struct {
	calls   int
	results []Result
	err     error
}

func (s *countingSearcher) Search(context.Context, string) ([]Result, error) {
	s.calls++
	return s.results, s.err
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]Result, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, []Result) error {
	return errors.New("connection refused")
}

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheWithClient(client, ttl), mr
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "search:dsa tutorial", CacheKey("  DSA   Tutorial "))
	assert.Equal(t, CacheKey("Go tutorial"), CacheKey("go  TUTORIAL"))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := []Result{{Title: "t", URL: "https://a.dev"}}
	require.NoError(t, c.Set(ctx, "k", want))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedisCache_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t, time.Minute)

	want := []Result{{Title: "Two Sum", URL: "https://leetcode.com/problems/two-sum/", Snippet: "array"}}
	require.NoError(t, c.Set(ctx, CacheKey("two sum"), want))
	require.NoError(t, c.Ping(ctx))

	got, ok, err := c.Get(ctx, CacheKey("two sum"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)

	_, ok, err = c.Get(ctx, CacheKey("two sum"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	require.NoError(t, mr.Set("search:bad", "not json"))

	_, ok, err := c.Get(context.Background(), "search:bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache("not-a-url://", time.Minute)
	assert.Error(t, err)
}

func TestCachedSearcher_HitAndMiss(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Minute)
	next := &countingSearcher{results: []Result{{Title: "a", URL: "https://a.dev"}}}
	s := NewCachedSearcher(next, c, nil)

	for i := 0; i < 3; i++ {
		results, err := s.Search(context.Background(), "Go tutorial")
		require.NoError(t, err)
		assert.Len(t, results, 1)
	}
	assert.Equal(t, 1, next.calls)

	_, err := s.Search(context.Background(), "go   TUTORIAL")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls, "normalized query shares the cache entry")
}

func TestCachedSearcher_DoesNotCacheFailures(t *testing.T) {
	next := &countingSearcher{err: &ProviderError{Query: "q", Message: "down"}}
	s := NewCachedSearcher(next, NewMemoryCache(8, time.Minute), nil)

	for i := 0; i < 2; i++ {
		_, err := s.Search(context.Background(), "q")
		assert.Error(t, err)
	}
	assert.Equal(t, 2, next.calls)

	next.err = nil
	next.results = nil
	for i := 0; i < 2; i++ {
		results, err := s.Search(context.Background(), "q")
		assert.NoError(t, err)
		assert.Empty(t, results)
	}
	assert.Equal(t, 4, next.calls)
}

func TestCachedSearcher_BrokenCacheFallsThrough(t *testing.T) {
	next := &countingSearcher{results: []Result{{URL: "https://a.dev"}}}
	s := NewCachedSearcher(next, brokenCache{}, nil)

	results, err := s.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, next.calls)
}

func TestSearcherFunc(t *testing.T) {
	var s Searcher = SearcherFunc(func(_ context.Context, q string) ([]Result, error) {
		return []Result{{Title: q}}, nil
	})
	results, err := s.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x", results[0].Title)
}
