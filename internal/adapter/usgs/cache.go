package usgs

import (
	"context"
	"sync"

	"github.com/printerm420/SalmonFlow/internal/domain"
	"github.com/printerm420/SalmonFlow/internal/observability"
)

// CachedDirectory wraps a SiteDirectory with an in-memory LRU cache for
// site metadata and a last-successful-value fallback for live discharge.
type CachedDirectory struct {
	inner   domain.SiteDirectory
	cache   *lruCache
	metrics *observability.Metrics

	mu       sync.Mutex
	lastFlow map[string]domain.LiveReading
}

// NewCachedDirectory creates a cache decorator around a site directory.
func NewCachedDirectory(inner domain.SiteDirectory, maxEntries int, metrics *observability.Metrics) *CachedDirectory {
	return &CachedDirectory{
		inner:    inner,
		cache:    newLRUCache(maxEntries),
		metrics:  metrics,
		lastFlow: make(map[string]domain.LiveReading),
	}
}

// LookupSite serves site metadata from the cache when present. Only
// non-empty results are cached so transient "not found" responses can be
// retried.
func (c *CachedDirectory) LookupSite(ctx context.Context, site string) (domain.SiteInfo, error) {
	if info, ok := c.cache.get(site); ok {
		c.metrics.USGSCache.WithLabelValues("site", "hit").Inc()
		return info, nil
	}
	c.metrics.USGSCache.WithLabelValues("site", "miss").Inc()

	info, err := c.inner.LookupSite(ctx, site)
	if err != nil {
		return info, err
	}
	if info.Name != "" {
		c.cache.put(site, info)
	}
	return info, nil
}

// LatestDischarge always asks the upstream first; the cache only answers
// when the upstream fails or reports no data, serving the last successful
// observation so the gauge stays renderable through transient outages.
func (c *CachedDirectory) LatestDischarge(ctx context.Context, site string) (domain.LiveReading, error) {
	live, err := c.inner.LatestDischarge(ctx, site)
	if err == nil && !live.Timestamp.IsZero() {
		c.mu.Lock()
		c.lastFlow[site] = live
		c.mu.Unlock()
		c.metrics.USGSCache.WithLabelValues("discharge", "miss").Inc()
		return live, nil
	}

	c.mu.Lock()
	last, ok := c.lastFlow[site]
	c.mu.Unlock()
	if err != nil && ok {
		c.metrics.USGSCache.WithLabelValues("discharge", "hit").Inc()
		return last, nil
	}
	c.metrics.USGSCache.WithLabelValues("discharge", "miss").Inc()
	return live, err
}

// lruCache is a simple thread-safe LRU cache for site metadata.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.SiteInfo
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.SiteInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.SiteInfo{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.SiteInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
