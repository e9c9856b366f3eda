package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value   string
	expires time.Time // zero means never
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// InMemoryCache is a thread-safe in-memory cache with optional TTL.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryCache creates an in-memory cache. A ttl of zero or less keeps
// entries forever.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	if ttl < 0 {
		ttl = 0
	}
	return &InMemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if entry.expired(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(key string, value string) error {
	entry := memoryEntry{value: value}
	if c.ttl > 0 {
		entry.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
}

// Entries returns a snapshot of all live entries.
func (c *InMemoryCache) Entries() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	out := make(map[string]string, len(c.entries))
	for key, entry := range c.entries {
		if !entry.expired(now) {
			out[key] = entry.value
		}
	}
	return out
}

var _ TranslationCache = (*InMemoryCache)(nil)
