package snapshot

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry is one cached snapshot document.
type cacheEntry struct {
	doc   *Document
	built time.Time
}

// CachedLoader wraps a Loader with a TTL cache. Repeated requests for
// the same snapshot (typical when several merge sessions share a base)
// hit the cache, and concurrent misses are collapsed through
// singleflight so the object is only fetched once.
type CachedLoader struct {
	loader *Loader
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
	sf      singleflight.Group
}

// NewCachedLoader creates a caching loader. A zero TTL disables
// caching entirely.
func NewCachedLoader(loader *Loader, ttl time.Duration) *CachedLoader {
	return &CachedLoader{
		loader:  loader,
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
	}
}

// Snapshot returns the snapshot document for the object name, from
// cache when fresh.
func (c *CachedLoader) Snapshot(ctx context.Context, objectName string) (*Document, error) {
	if c.ttl == 0 {
		return c.loader.Snapshot(ctx, objectName)
	}

	// Fast path: fresh cache hit.
	c.mu.RLock()
	entry, exists := c.entries[objectName]
	c.mu.RUnlock()
	if exists && time.Since(entry.built) <= c.ttl {
		return entry.doc, nil
	}

	// Slow path: fetch through singleflight to prevent stampedes.
	result, err, _ := c.sf.Do(objectName, func() (any, error) {
		// Double-check after acquiring the singleflight slot.
		c.mu.RLock()
		entry, exists := c.entries[objectName]
		c.mu.RUnlock()
		if exists && time.Since(entry.built) <= c.ttl {
			return entry.doc, nil
		}

		doc, err := c.loader.Snapshot(ctx, objectName)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[objectName] = &cacheEntry{doc: doc, built: time.Now()}
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Document), nil
}

// Invalidate drops a cached snapshot, forcing the next request to
// fetch it again.
func (c *CachedLoader) Invalidate(objectName string) {
	c.mu.Lock()
	delete(c.entries, objectName)
	c.mu.Unlock()
}
