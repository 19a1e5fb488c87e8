package cache

import (
	"context"
	"sync"
	"time"

	"enrollment-api/internal/model"
)

type memoryEntry struct {
	profile   *model.UserProfile
	expiresAt time.Time
}

// MemoryCache is a process-local ProfileCache used when Redis is not
// configured. Expired entries are dropped lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, uid string) (*model.UserProfile, bool) {
	c.mu.RLock()
	entry, ok := c.entries[uid]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.Evict(context.Background(), uid)
		return nil, false
	}
	return entry.profile, true
}

func (c *MemoryCache) Set(_ context.Context, uid string, profile *model.UserProfile, ttl time.Duration) {
	if profile == nil || ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[uid] = memoryEntry{profile: profile, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) Evict(_ context.Context, uid string) {
	c.mu.Lock()
	delete(c.entries, uid)
	c.mu.Unlock()
}
