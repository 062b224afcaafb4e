// Package cache provides a TTL-aware in-memory LRU cache and a two-level
// read-through helper that layers it over an optional Redis client.
//
// Example usage:
//
//	mem := cache.NewCache(cfg.CacheConfig)
//	defer mem.Stop()
//
//	ml := cache.NewMultiLevel(mem, redisClient, cache.WithRedisTTL(5*time.Minute))
//	body, err := ml.GetString(ctx, "registry:...", fetch)
package cache

import (
	"time"

	"github.com/duccv/medrecords-api/config"
)

// Cache is the contract of the in-memory level.
type Cache interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(key string) (any, bool)

	// Set stores value with the default TTL.
	Set(key string, value any)

	// SetWithTTL stores value with a custom TTL.
	SetWithTTL(key string, value any, ttl time.Duration)

	Delete(key string)

	// Size returns the number of stored entries, including expired entries
	// not yet cleaned up.
	Size() int

	MaxSize() int

	Clear()

	// Stop shuts down the background cleanup goroutine.
	Stop()
}

// entry is a cached value together with its expiry.
type entry struct {
	Value   any
	Timeout time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.Timeout)
}

// NewCache creates the in-memory cache described by cfg.
func NewCache(cfg config.CacheConfig) Cache {
	return NewLRUCache(cfg.Capacity, time.Duration(cfg.DefaultTTL)*time.Second)
}
