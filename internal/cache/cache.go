// Package cache provides a small in-process TTL cache used to keep booking
// configuration snapshots warm between availability queries. The scheduling
// engine itself never sees it; callers decide what to cache.
package cache

import (
	"context"
	"sync"
	"time"
)

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a concurrency-safe map with per-entry expiry and a background
// sweep. Construct one at process start and Close it on shutdown.
type Cache struct {
	clock Clock
	mu    sync.RWMutex
	items map[string]entry

	sweepInterval time.Duration
	sweepCtx      context.Context
	sweepCancel   context.CancelFunc
	sweepOnce     sync.Once
	sweepWg       sync.WaitGroup
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the clock, for tests.
func WithClock(clock Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// WithSweepInterval overrides how often expired entries are swept out.
func WithSweepInterval(interval time.Duration) Option {
	return func(c *Cache) {
		if interval > 0 {
			c.sweepInterval = interval
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		clock:         realClock{},
		items:         make(map[string]entry),
		sweepInterval: time.Minute,
		sweepCtx:      ctx,
		sweepCancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close stops the sweep goroutine and releases resources.
func (c *Cache) Close() {
	c.sweepCancel()
	c.sweepWg.Wait()
}

// Get returns the live value for key, if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	now := c.clock.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || now.After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.startSweep()
	now := c.clock.Now()

	c.mu.Lock()
	c.items[key] = entry{value: value, expiresAt: now.Add(ttl)}
	c.mu.Unlock()
}

// Delete removes key immediately.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len reports the number of entries, expired ones included until swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) startSweep() {
	c.sweepOnce.Do(func() {
		c.sweepWg.Add(1)
		go func() {
			defer c.sweepWg.Done()
			ticker := time.NewTicker(c.sweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-c.sweepCtx.Done():
					return
				case <-ticker.C:
					c.sweep()
				}
			}
		}()
	})
}

func (c *Cache) sweep() {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
		}
	}
}
