package reportcache

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// CacheService provides generic key/value caching backed by ristretto.
type CacheService struct {
	cache *ristretto.Cache
	mu    sync.RWMutex
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	MaxCost     int64
	NumCounters int64
	BufferItems int64
	TTL         time.Duration
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		MaxCost:     100000,
		NumCounters: 1000000,
		BufferItems: 64,
		TTL:         5 * time.Minute,
	}
}

// NewCacheService creates a new cache service
func NewCacheService(config *CacheConfig) (*CacheService, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &CacheService{cache: cache}, nil
}

// Get retrieves a value from cache
func (c *CacheService) Get(key string) (interface{}, bool) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	return value, true
}

// Set stores a value in cache with TTL
func (c *CacheService) Set(key string, value interface{}, cost int64, ttl time.Duration) bool {
	return c.cache.SetWithTTL(key, value, cost, ttl)
}

// Delete removes a value from cache
func (c *CacheService) Delete(key string) {
	c.cache.Del(key)
}

// Clear clears the entire cache
func (c *CacheService) Clear() {
	c.cache.Clear()
}

// Stats returns cache statistics
func (c *CacheService) Stats() *ristretto.Metrics {
	return c.cache.Metrics
}

// Close closes the cache
func (c *CacheService) Close() {
	c.cache.Close()
}

// TraverserFactory builds the value cached against a report path. Kept as a
// function so reportcache never imports the report package's parsing details.
type TraverserFactory func(path string) (interface{}, error)

// TraverserCache memoizes whatever a TraverserFactory builds for a report
// path, keyed by path+mtime so edits to the underlying file invalidate the
// entry without an explicit Delete call.
type TraverserCache struct {
	cache   *CacheService
	factory TraverserFactory
}

// NewTraverserCache wraps factory with a path+mtime keyed ristretto cache.
func NewTraverserCache(factory TraverserFactory, config *CacheConfig) (*TraverserCache, error) {
	cache, err := NewCacheService(config)
	if err != nil {
		return nil, err
	}
	return &TraverserCache{cache: cache, factory: factory}, nil
}

// Get returns the cached value for path, building and storing it on a miss.
// A changed mtime since the last Get is treated as a miss.
func (t *TraverserCache) Get(path string) (interface{}, error) {
	key, err := cacheKey(path)
	if err != nil {
		return nil, err
	}

	if cached, found := t.cache.Get(key); found {
		return cached, nil
	}

	value, err := t.factory(path)
	if err != nil {
		return nil, err
	}

	t.cache.Set(key, value, 1, 0)
	return value, nil
}

// Invalidate drops any cached entry for path regardless of mtime.
func (t *TraverserCache) Invalidate(path string) {
	if key, err := cacheKey(path); err == nil {
		t.cache.Delete(key)
	}
}

func cacheKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reportcache: stat %s: %w", path, err)
	}
	return fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano()), nil
}
