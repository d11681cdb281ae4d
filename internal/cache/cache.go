// Package cache provides a typed in-memory TTL cache on top of
// patrickmn/go-cache. The remote collection store keeps listing results
// here so repeated queries do not hit the document store.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a TTL cache holding values of type V.
type Cache[V any] struct {
	store *gocache.Cache
}

// New creates a new cache with the given TTL and cleanup interval.
// A non-positive ttl disables caching: Set becomes a no-op.
func New[V any](ttl, cleanupInterval time.Duration) *Cache[V] {
	if ttl <= 0 {
		return &Cache[V]{}
	}
	return &Cache[V]{store: gocache.New(ttl, cleanupInterval)}
}

// Get retrieves a value from the cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c.store == nil {
		return zero, false
	}
	v, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	return typed, ok
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	if c.store == nil {
		return
	}
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// Delete removes a value from the cache.
func (c *Cache[V]) Delete(key string) {
	if c.store != nil {
		c.store.Delete(key)
	}
}

// Clear removes all items from the cache.
func (c *Cache[V]) Clear() {
	if c.store != nil {
		c.store.Flush()
	}
}

// ItemCount returns the number of items in the cache, expired ones included
// until the next cleanup.
func (c *Cache[V]) ItemCount() int {
	if c.store == nil {
		return 0
	}
	return c.store.ItemCount()
}
