// Package cache provides a small in-process TTL cache used by the store
// facade for hot read paths.
package cache

import (
	"context"
	"sync"
	"time"
)

// Config controls cache behavior.
type Config struct {
	// DefaultTTL is applied by Set; SetWithTTL overrides per entry.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept. Zero disables
	// the background janitor; expired entries are then dropped lazily on Get.
	CleanupInterval time.Duration
	// MaxItems bounds the cache size. When full, Set evicts the entry
	// closest to expiry. Zero means unbounded.
	MaxItems int
	// OnEviction, when set, is invoked for swept and evicted entries.
	OnEviction func(key string, value any)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with per-entry expiry.
type Cache struct {
	config Config

	mu   sync.RWMutex
	data map[string]entry

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a new cache and starts its janitor when a cleanup interval is
// configured. Callers must Close the cache to stop the janitor.
func New(config Config) *Cache {
	c := &Cache{
		config: config,
		data:   make(map[string]entry),
		stop:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.janitor()
	}
	return c
}

// Get retrieves a value. Expired entries are treated as missing.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.Delete(context.Background(), key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.MaxItems > 0 && len(c.data) >= c.config.MaxItems {
		if _, exists := c.data[key]; !exists {
			c.evictOldestLocked()
		}
	}
	c.data[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes a value.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Clear removes all values.
func (c *Cache) Clear(_ context.Context) {
	c.mu.Lock()
	c.data = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of entries, including not-yet-swept expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Close stops the janitor goroutine. The cache stays usable afterwards.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestExpiry time.Time
	for k, e := range c.data {
		if oldestKey == "" || e.expiresAt.Before(oldestExpiry) {
			oldestKey = k
			oldestExpiry = e.expiresAt
		}
	}
	if oldestKey == "" {
		return
	}
	evicted := c.data[oldestKey]
	delete(c.data, oldestKey)
	if c.config.OnEviction != nil {
		c.config.OnEviction(oldestKey, evicted.value)
	}
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()

	c.mu.Lock()
	var expired map[string]any
	for k, e := range c.data {
		if now.After(e.expiresAt) {
			if expired == nil {
				expired = make(map[string]any)
			}
			expired[k] = e.value
			delete(c.data, k)
		}
	}
	c.mu.Unlock()

	if c.config.OnEviction != nil {
		for k, v := range expired {
			c.config.OnEviction(k, v)
		}
	}
}
