package validation

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	valid     bool
	expiresAt time.Time
}

// MemoryCache is a process-local Cache. Once it holds more than maxEntries it sweeps
// every expired entry on the next store; live entries are never dropped early.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemoryCache creates an empty cache. Non-positive values fall back to the defaults.
func NewMemoryCache(ttl time.Duration, maxEntries int, opts ...MemoryOption) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &MemoryCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Lookup(_ context.Context, fingerprint string) (bool, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fingerprint]
	if !ok {
		return false, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, fingerprint)
		return false, false, nil
	}
	return e.valid, true, nil
}

func (c *MemoryCache) Store(_ context.Context, fingerprint string, valid bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[fingerprint] = entry{valid: valid, expiresAt: now.Add(c.ttl)}

	if len(c.entries) > c.maxEntries {
		for k, e := range c.entries {
			if !now.Before(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
	return nil
}

// Len reports the number of entries currently held, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
