package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	defaultNumCounters = 1e5
	defaultMaxCost     = 1 << 26
	defaultBufferItems = 64
)

// QueryCacheConfig sizes the admission-controlled query cache
type QueryCacheConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// QueryCache stores query results in ristretto. Each entry has unit cost,
// so MaxCost bounds the entry count.
type QueryCache struct {
	cache *ristretto.Cache
}

// NewQueryCache creates a ristretto-backed query cache
func NewQueryCache(cfg QueryCacheConfig) (*QueryCache, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = defaultNumCounters
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = defaultMaxCost
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = defaultBufferItems
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &QueryCache{cache: c}, nil
}

// Get retrieves a value from cache
func (c *QueryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return c.cache.Get(key)
}

// Set stores value for ttl and waits for the buffered write to apply, so a
// Get that follows sees the entry unless admission dropped it.
func (c *QueryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.cache.SetWithTTL(key, value, 1, ttl) {
		return nil
	}
	c.cache.Wait()
	return nil
}

// Delete removes a value from cache
func (c *QueryCache) Delete(ctx context.Context, key string) error {
	c.cache.Del(key)
	return nil
}

// Clear removes all values from cache
func (c *QueryCache) Clear(ctx context.Context) error {
	c.cache.Clear()
	return nil
}

// Wait blocks until buffered writes are applied
func (c *QueryCache) Wait() {
	c.cache.Wait()
}

// Close releases the cache's goroutines
func (c *QueryCache) Close() {
	c.cache.Close()
}
