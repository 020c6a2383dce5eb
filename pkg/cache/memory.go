// Package cache provides a generic in-memory TTL cache.
package cache

import (
	"sync"
	"time"
)

// entry holds a value and its expiry deadline.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe in-memory cache whose entries expire after a
// fixed idle duration. Reads through Touch renew the deadline.
type TTLCache[K comparable, V any] struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[K]entry[V]
}

// NewTTLCache creates a cache whose entries expire ttl after their last
// Set or Touch. A non-positive ttl disables expiry.
func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		ttl:  ttl,
		data: make(map[K]entry[V]),
	}
}

// Set adds or replaces an item.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry[V]{value: value, expiresAt: c.deadline()}
}

// Get retrieves an item. Expired items are treated as absent.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Touch renews an item's deadline and returns it.
func (c *TTLCache[K, V]) Touch(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok || c.expired(e) {
		delete(c.data, key)
		var zero V
		return zero, false
	}
	e.expiresAt = c.deadline()
	c.data[key] = e
	return e.value, true
}

// Delete removes an item.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Len returns the number of unexpired items.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.data {
		if !c.expired(e) {
			n++
		}
	}
	return n
}

// PurgeExpired removes expired items and returns how many were dropped.
func (c *TTLCache[K, V]) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for k, e := range c.data {
		if c.expired(e) {
			delete(c.data, k)
			dropped++
		}
	}
	return dropped
}

// StartJanitor purges expired items every interval until stop is closed.
func (c *TTLCache[K, V]) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.PurgeExpired()
			case <-stop:
				return
			}
		}
	}()
}

func (c *TTLCache[K, V]) deadline() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.ttl)
}

func (c *TTLCache[K, V]) expired(e entry[V]) bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}
