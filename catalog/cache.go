package catalog

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zdq",
	Name:      "catalog_cache_lookups_total",
	Help:      "Catalog lookups by cache result.",
}, []string{"result"})

type cacheEntry struct {
	values    []string
	expiresAt time.Time
}

// Cache memoizes catalog lookups for a fixed time-to-live. Concurrent misses on
// the same key share a single fetch. Failed fetches are not cached.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu struct {
		sync.Mutex
		entries map[string]cacheEntry
		hits    int64
		misses  int64
	}
}

// NewCache returns a cache. A ttl of zero disables caching.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{ttl: ttl, now: time.Now}
	c.mu.entries = map[string]cacheEntry{}
	return c
}

func (c *Cache) Get(key string, fetch func() ([]string, error)) ([]string, error) {
	if c.ttl <= 0 {
		return fetch()
	}
	c.mu.Lock()
	e, ok := c.mu.entries[key]
	if ok && c.now().Before(e.expiresAt) {
		c.mu.hits++
		c.mu.Unlock()
		cacheLookups.WithLabelValues("hit").Inc()
		return append([]string(nil), e.values...), nil
	}
	c.mu.misses++
	c.mu.Unlock()
	cacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		vals, err := fetch()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.mu.entries[key] = cacheEntry{values: vals, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return vals, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

// Stats returns the number of hits and misses served so far.
func (c *Cache) Stats() (hits int64, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mu.hits, c.mu.misses
}

// Invalidate drops every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mu.entries = map[string]cacheEntry{}
}
