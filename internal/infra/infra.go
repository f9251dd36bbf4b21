// Package infra provides the small shared pieces behind the live beta
// lookups: a TTL cache and a token-bucket rate limiter.
package infra

import (
	"context"
	"sync"
	"time"
)

// --- TTL cache ---

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with a default TTL and a bound
// on the number of entries.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewCache creates a cache whose entries live for ttl. When maxEntries is
// reached, expired entries are swept and then the entry closest to expiry
// is evicted. A non-positive maxEntries leaves the cache unbounded.
func NewCache[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		entries:    make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key if present and unexpired. An expired entry
// is dropped.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().After(e.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// evictLocked drops expired entries, then the soonest-expiring one if the
// cache is still full.
func (c *Cache[V]) evictLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}
	var (
		oldest    string
		oldestExp time.Time
		first     = true
	)
	for k, e := range c.entries {
		if first || e.expiresAt.Before(oldestExp) {
			oldest, oldestExp, first = k, e.expiresAt, false
		}
	}
	delete(c.entries, oldest)
}

// --- Rate limiter ---

// RateLimiter allows maxTokens requests per refill period.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	period     time.Duration
	lastRefill time.Time
	poll       time.Duration
}

// NewRateLimiter creates a limiter granting maxTokens per period.
// A non-positive maxTokens disables limiting.
func NewRateLimiter(maxTokens int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		period:     period,
		lastRefill: time.Now(),
		poll:       50 * time.Millisecond,
	}
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil || rl.maxTokens <= 0 {
		return nil
	}
	for {
		if rl.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.poll):
		}
	}
}

func (rl *RateLimiter) take() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elapsed := time.Since(rl.lastRefill); elapsed >= rl.period {
		periods := int(elapsed / rl.period)
		rl.tokens = min(rl.tokens+periods*rl.maxTokens, rl.maxTokens)
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.period)
	}
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}
