package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-memory TTL cache for hot lookups. Durable state lives in
// the segment store; this only short-circuits repeated work within a window.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a new memory cache
func NewMemory(defaultTTL time.Duration, cleanupInterval time.Duration) *Memory {
	return &Memory{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache
func (m *Memory) Get(key string) (interface{}, bool) {
	return m.cache.Get(key)
}

// Set stores a value with the given TTL (0 uses the default TTL)
func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	m.cache.Set(key, value, ttl)
}

// Delete removes a value from the cache
func (m *Memory) Delete(key string) {
	m.cache.Delete(key)
}

// Flush removes all values
func (m *Memory) Flush() {
	m.cache.Flush()
}
