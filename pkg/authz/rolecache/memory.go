package rolecache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process role cache for single-node deployments and
// tests. Expired entries are dropped lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	roles     []string
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory role cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get returns the cached roles for subject; expired or absent is empty.
func (c *MemoryCache) Get(ctx context.Context, subject string) ([]string, error) {
	c.mu.RLock()
	entry, ok := c.entries[subject]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, subject)
		c.mu.Unlock()
		return nil, nil
	}

	out := make([]string, len(entry.roles))
	copy(out, entry.roles)
	return out, nil
}

// Set stores the role set for subject. A zero TTL means no expiry.
func (c *MemoryCache) Set(ctx context.Context, subject string, roles []string, ttl time.Duration) error {
	entry := memoryEntry{roles: append([]string(nil), roles...)}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[subject] = entry
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached role set for subject.
func (c *MemoryCache) Invalidate(ctx context.Context, subject string) error {
	c.mu.Lock()
	delete(c.entries, subject)
	c.mu.Unlock()
	return nil
}

// Close clears all entries.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
