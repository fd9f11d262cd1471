package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mladenvic/promoaffiliate/internal/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is the single-process stand-in for RedisCache. It also serves
// as the Locker, which only excludes goroutines of this process.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]entry
	nowFn func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: map[string]entry{}, nowFn: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(key)
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *MemoryCache) TryLock(_ context.Context, key, owner string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.live(key); held {
		return false, nil
	}
	c.put(key, owner, ttl)
	return true, nil
}

func (c *MemoryCache) Unlock(_ context.Context, key, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.live(key); ok && e.value == owner {
		delete(c.items, key)
	}
	return nil
}

func (c *MemoryCache) live(key string) (entry, bool) {
	e, ok := c.items[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !c.nowFn().Before(e.expiresAt) {
		delete(c.items, key)
		return entry{}, false
	}
	return e, true
}

func (c *MemoryCache) put(key, value string, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.nowFn().Add(ttl)
	}
	c.items[key] = e
}

var (
	_ ports.Cache  = (*MemoryCache)(nil)
	_ ports.Locker = (*MemoryCache)(nil)
)
