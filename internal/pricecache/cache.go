// Package pricecache memoizes upstream fetch results for a bounded TTL so a
// refresh cycle never hammers the same endpoint twice. The key space is a few
// dozen instruments times a handful of sources, so eviction is purely
// time-based with no capacity bound.
package pricecache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sgbcarry/internal/observ"
)

// Key identifies one cached fetch: which source, which instrument, and any
// extra query parameters (history window, interval).
type Key struct {
	Source string
	Symbol string
	Params string
}

func (k Key) String() string {
	return k.Source + "|" + k.Symbol + "|" + k.Params
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is safe for concurrent use. Negative results are cached exactly like
// positive ones, at the same TTL, to bound retry storms against a dead
// upstream.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group

	now func() time.Time // overridable in tests
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// GetOrFetch returns the cached value for key if present and unexpired,
// otherwise runs fetch, stores its result for ttl, and returns it.
// Concurrent callers for the same key share a single fetch.
func GetOrFetch[T any](c *Cache, key Key, ttl time.Duration, fetch func() T) T {
	k := key.String()
	if v, ok := c.lookup(k); ok {
		observ.IncCounter("price_cache_hits_total", map[string]string{"source": key.Source})
		return v.(T)
	}
	observ.IncCounter("price_cache_misses_total", map[string]string{"source": key.Source})

	v, _, _ := c.group.Do(k, func() (any, error) {
		// another caller may have filled the entry while we queued
		if v, ok := c.lookup(k); ok {
			return v, nil
		}
		val := fetch()
		c.store(k, val, ttl)
		return val, nil
	})
	return v.(T)
}

// Forget drops one entry, forcing the next GetOrFetch to refetch. Used when
// the caller knows the cached value is no longer representative.
func (c *Cache) Forget(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key.String())
}

// Len reports live (unexpired) entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *Cache) lookup(k string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, k)
		observ.IncCounter("price_cache_expired_total", nil)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(k string, v any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = entry{value: v, expiresAt: c.now().Add(ttl)}
}
