// Package geocache provides a bounded, time-expiring memo used by the
// resolvers to avoid redundant provider calls. Eviction is by insertion
// order (oldest-inserted first), not LRU, and failed lookups are cached
// with a shorter TTL than successes so retries come sooner.
package geocache

import (
	"sync"
	"time"
)

// Default cache behavior shared by the resolvers.
const (
	DefaultCapacity   = 200
	DefaultTTL        = 10 * time.Minute
	DefaultFailureTTL = 2 * time.Minute
	AddressTTL        = 24 * time.Hour
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a capacity-bounded TTL cache with insertion-order eviction.
// It is safe for concurrent use; a race between two invocations computing
// the same key costs at most a duplicate provider call, never a
// correctness violation.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]entry[V]
	order    []string
	now      func() time.Time
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithClock overrides the time source, for deterministic tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) {
		c.now = now
	}
}

// New creates a cache with the given capacity and default TTL.
func New[V any](capacity int, ttl time.Duration, opts ...Option[V]) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache[V]{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]entry[V]),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.removeLocked(key)
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with an explicit TTL. When the cache is at
// capacity and the key is new, the oldest-inserted entry is evicted first.
// Overwriting an existing key keeps its original insertion position.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		for len(c.order) >= c.capacity {
			c.removeLocked(c.order[0])
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Len returns the number of stored entries, including not-yet-swept
// expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
