package cache

import (
	"sync"
	"time"
)

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe cache whose entries expire after a fixed
// time-to-live. Expired entries are treated as absent on read and removed
// lazily; Cleanup may be called to purge them eagerly.
type TTLCache[K comparable, V any] struct {
	ttl   time.Duration
	items map[K]ttlEntry[V]
	mu    sync.Mutex

	// now is swappable for tests
	now func() time.Time
}

// NewTTLCache creates a cache with the specified time-to-live.
// The TTL must be positive, otherwise it panics.
func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	if ttl <= 0 {
		panic("TTL cache duration must be positive")
	}
	return &TTLCache[K, V]{
		ttl:   ttl,
		items: make(map[K]ttlEntry[V]),
		now:   time.Now,
	}
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired, zero value and false otherwise.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Put adds or replaces a value, resetting its expiry to a full TTL from now.
func (c *TTLCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = ttlEntry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// PutIfAbsent stores the value only when no live entry exists for the key.
// Returns true if the value was stored. This makes the cache usable as a
// sliding-window deduplication set: the first caller wins, repeats within
// the TTL are rejected.
func (c *TTLCache[K, V]) PutIfAbsent(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok && !c.now().After(entry.expiresAt) {
		return false
	}
	c.items[key] = ttlEntry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
	return true
}

// Remove deletes an entry regardless of its expiry state.
// Returns true if a live entry was removed.
func (c *TTLCache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	delete(c.items, key)
	return ok && !c.now().After(entry.expiresAt)
}

// Len returns the number of entries currently held, including entries that
// have expired but not yet been purged.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]ttlEntry[V])
}

// Cleanup removes all expired entries and returns how many were purged.
func (c *TTLCache[K, V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	purged := 0
	for key, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, key)
			purged++
		}
	}
	return purged
}
