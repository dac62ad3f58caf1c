// Package cache provides a content-addressed TTL cache for expensive research
// lookups. Concurrent callers computing the same key are collapsed into a
// single in-flight computation; compute errors are returned to every waiter
// and never cached.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/researchmesh/logging"
)

type entry struct {
	value     any
	category  string
	expiresAt time.Time
}

// Options configure a Cache.
type Options struct {
	// DefaultTTL applies to categories without an explicit TTL.
	DefaultTTL time.Duration
	// CategoryTTL overrides the TTL per result category, for example a short
	// TTL for "news" and a long one for "profile".
	CategoryTTL map[string]time.Duration
	// Clock supplies the current time. Tests inject a fake.
	Clock func() time.Time
	// Logger receives hit/miss/store events at debug level.
	Logger logging.Logger
}

// Cache is a TTL cache keyed by content-derived strings. It is safe for
// concurrent use.
type Cache struct {
	mu          sync.RWMutex
	entries     map[string]entry
	defaultTTL  time.Duration
	categoryTTL map[string]time.Duration
	now         func() time.Time
	group       singleflight.Group
	logger      logging.Logger
}

// New creates a Cache.
func New(optFns ...func(o *Options)) *Cache {
	opts := Options{
		DefaultTTL: 15 * time.Minute,
		Clock:      time.Now,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	ttls := map[string]time.Duration{}
	for k, v := range opts.CategoryTTL {
		ttls[k] = v
	}
	return &Cache{
		entries:     map[string]entry{},
		defaultTTL:  opts.DefaultTTL,
		categoryTTL: ttls,
		now:         opts.Clock,
		logger:      opts.Logger,
	}
}

// EntryOptions override storage behavior for a single GetOrCompute call.
type EntryOptions struct {
	// TTL replaces the category TTL for this entry when positive.
	TTL time.Duration
}

// GetOrCompute returns the cached value for key, or runs compute exactly once
// across concurrent callers and caches the successful result under the
// category's TTL. The computation is detached from the individual caller's
// context, so one caller's cancellation cannot fail the flight for everyone
// sharing it; the canceled caller itself returns ctx.Err() immediately.
func (c *Cache) GetOrCompute(ctx context.Context, key, category string, compute func(ctx context.Context) (any, error), optFns ...func(o *EntryOptions)) (any, error) {
	if v, ok := c.lookup(key); ok {
		c.logger.Debug("cache hit", "category", category, "key", key)
		return v, nil
	}
	eopts := EntryOptions{}
	for _, fn := range optFns {
		fn(&eopts)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// A racing flight may have stored the value between our miss and
		// winning the flight.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		c.logger.Debug("cache miss", "category", category, "key", key)
		v, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, category, v, eopts.TTL)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("compute %s: %w", category, res.Err)
		}
		return res.Val, nil
	}
}

// Get returns the cached value for key without computing.
func (c *Cache) Get(key string) (any, bool) {
	return c.lookup(key)
}

// Invalidate removes one key so the next GetOrCompute recomputes. An
// in-flight computation for the key is detached from future callers.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
	c.logger.Debug("cache invalidate", "key", key)
}

// ClearCategory removes every entry stored under category and returns the
// number removed.
func (c *Cache) ClearCategory(category string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if e.category == category {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// SweepExpired removes entries whose TTL has passed and returns the count.
func (c *Cache) SweepExpired() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key, category string, v any, ttlOverride time.Duration) {
	ttl := ttlOverride
	if ttl <= 0 {
		ttl = c.ttlFor(category)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: v, category: category, expiresAt: c.now().Add(ttl)}
}

func (c *Cache) ttlFor(category string) time.Duration {
	if ttl, ok := c.categoryTTL[category]; ok {
		return ttl
	}
	return c.defaultTTL
}
