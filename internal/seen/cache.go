// ABOUTME: Thread-safe bounded TTL cache of bridge ids verified to exist in storage
// ABOUTME: Skips redundant existence checks before non-critical log writes

package seen

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry stores the timestamp and list element for a cached bridge id.
type cacheEntry struct {
	timestamp time.Time
	element   *list.Element
}

// Cache remembers which bridge ids have been verified to exist, so the
// dispatcher can skip an existence query before logging. It is purely an
// optimization: resetting it at any time is safe. Entries expire after the
// TTL and the oldest entry is evicted at capacity.
type Cache struct {
	mu      sync.RWMutex
	seen    map[string]*cacheEntry
	order   *list.List // bridge ids in insertion order (oldest at front)
	ttl     time.Duration
	maxSize int
}

// New creates a cache with the given TTL and maximum size. Expired entries
// are pruned lazily on access; there is no background goroutine to manage.
func New(ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		seen:    make(map[string]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Check returns true if the bridge id was verified and has not expired.
func (c *Cache) Check(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.seen[id]
	if !ok {
		return false
	}
	return time.Since(entry.timestamp) < c.ttl
}

// Mark records a verified bridge id. At capacity the oldest entry is
// evicted to make room.
func (c *Cache) Mark(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.seen[id]; exists {
		entry.timestamp = time.Now()
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.seen) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(id)
	c.seen[id] = &cacheEntry{
		timestamp: time.Now(),
		element:   elem,
	}
}

// Reset clears the cache. Used by tests for deterministic runs.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = make(map[string]*cacheEntry)
	c.order.Init()
}

// Len returns the number of cached ids, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.seen)
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.seen, id)
}
