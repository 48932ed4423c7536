package dashboard

import (
	"sync"
	"time"
)

// Cache is a TTL cache for computed aggregates.
type Cache struct {
	data    map[string]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
	now     func() time.Time
	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once

	hits   int64
	misses int64
}

type cacheEntry struct {
	value      any
	expiration time.Time
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewCache creates a cache and starts its cleanup loop. A non-positive ttl
// disables caching.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{
		data: make(map[string]cacheEntry),
		ttl:  ttl,
		now:  time.Now,
		done: make(chan struct{}),
	}
	if ttl > 0 {
		c.cleanup = time.NewTicker(time.Minute)
		go c.cleanupLoop()
	}
	return c
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok || c.now().After(entry.expiration) {
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.value, true
}

func (c *Cache) Set(key string, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheEntry{value: value, expiration: c.now().Add(c.ttl)}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]cacheEntry)
}

func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{Size: len(c.data), Hits: c.hits, Misses: c.misses}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

func (c *Cache) cleanupLoop() {
	for {
		select {
		case <-c.cleanup.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if now.After(entry.expiration) {
			delete(c.data, key)
		}
	}
}

// Stop ends the cleanup loop.
func (c *Cache) Stop() {
	c.once.Do(func() {
		if c.cleanup != nil {
			c.cleanup.Stop()
		}
		close(c.done)
	})
}

// cached returns the value under key, computing and storing it on a miss.
func cached[T any](c *Cache, key string, compute func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}
