package csvsource

import (
	"context"
	"sync"

	"github.com/aleyanazifa/hfmd-analytics-service/internal/domain"
	"github.com/aleyanazifa/hfmd-analytics-service/internal/observability"
)

// CachedFetcher wraps a TableFetcher with an in-memory cache keyed by source
// URI. A cached source is never refetched: invalidation is Clear or process
// restart, preserving the dashboard's fetch-once-per-source behavior. The
// cache is bounded so a deployment cycling through many sources stays finite;
// a single-source deployment never evicts.
type CachedFetcher struct {
	inner   domain.TableFetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner domain.TableFetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, source string) (domain.RawTable, error) {
	if table, ok := c.cache.get(source); ok {
		c.metrics.SourceCache.WithLabelValues("hit").Inc()
		return table, nil
	}
	c.metrics.SourceCache.WithLabelValues("miss").Inc()

	table, err := c.inner.Fetch(ctx, source)
	if err != nil {
		// Failures are not cached so the next refresh retries the source.
		return table, err
	}
	c.cache.put(source, table)
	return table, nil
}

// Clear drops every cached source, forcing the next Fetch to hit the origin.
func (c *CachedFetcher) Clear() {
	c.cache.clear()
}

// lruCache is a simple thread-safe LRU cache for raw tables.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.RawTable
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.RawTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.RawTable{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.RawTable) {
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

func (c *lruCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.head = nil
	c.tail = nil
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
