// Package cache implements the C2 Response Cache: a TTL-keyed store of
// completed LoadResponses.
//
// The fingerprint formula is "{url}:{respond_with}" exactly, per §4.2 and
// §9 of the specification. Other options (selectors, summaries, cookies)
// deliberately do not participate in the key — a documented aliasing
// limitation the component contract preserves rather than silently fixes.
package cache

import (
	"sync"
	"time"

	"github.com/use-agent/webloader/models"
)

type entry struct {
	response  *models.LoadResponse
	createdAt time.Time
	ttl       time.Duration
}

// Cache is the process-wide response cache. Safe for concurrent use,
// following the teacher's RWMutex+map idiom (the Go analog of the
// original's DashMap).
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	defaultTTL time.Duration
	maxEntries int
	stop       chan struct{}
}

// New creates a Cache with the given default TTL and a soft capacity
// bound, and starts its background cleanup sweep (every 5 minutes,
// mirroring the teacher's cache.go).
func New(defaultTTL time.Duration, maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Close stops the background cleanup goroutine.
func (c *Cache) Close() { close(c.stop) }

// Key computes the fingerprint for a URL and respond_with value.
func Key(url string, respondWith models.ResponseFormat) string {
	return string(url) + ":" + string(respondWith)
}

// GetWithTolerance returns a cache hit if an entry exists and its age is
// less than tolerance (falling back to the entry's own TTL when tolerance
// is nil). The returned response is a shallow copy with metadata.cached
// forced to true.
func (c *Cache) GetWithTolerance(key string, tolerance *time.Duration) (*models.LoadResponse, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	effective := e.ttl
	if tolerance != nil {
		effective = *tolerance
	}
	if time.Since(e.createdAt) >= effective {
		return nil, false
	}

	resp := *e.response
	resp.Metadata.Cached = true
	return &resp, true
}

// Set inserts resp under key with the given ttl (or the cache's default
// when ttl is nil).
func (c *Cache) Set(key string, resp *models.LoadResponse, ttl *time.Duration) {
	effective := c.defaultTTL
	if ttl != nil {
		effective = *ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		response:  resp,
		createdAt: time.Now(),
		ttl:       effective,
	}
}

// Invalidate removes a single key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

// Clear empties the cache entirely.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*entry)
}

// CleanupExpired sweeps entries whose effective TTL has elapsed.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.store {
		if time.Since(e.createdAt) >= e.ttl {
			delete(c.store, k)
			removed++
		}
	}
	return removed
}

// Size reports the current number of entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.CleanupExpired()
		}
	}
}
