// internal/browser/layout/cache.go
package layout

import (
	"sort"
	"time"
)

type cacheEntry struct {
	result     *Result
	createdAt  time.Time
	accesses   uint64
	lastAccess uint64
	domHash    uint64
	cssHash    uint64
}

// resultCache is a keyed store of layout results. When full, an insert
// evicts the least recently used quarter of the entries.
type resultCache struct {
	capacity int
	entries  map[uint64]*cacheEntry
	tick     uint64
}

func newResultCache(capacity int) *resultCache {
	if capacity < 1 {
		capacity = 1
	}
	return &resultCache{capacity: capacity, entries: make(map[uint64]*cacheEntry)}
}

// get returns a copy of the cached result for key.
func (c *resultCache) get(key uint64) (*Result, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.tick++
	e.accesses++
	e.lastAccess = c.tick
	return e.result.Clone(), true
}

// put stores a copy of res. It returns the number of entries evicted.
func (c *resultCache) put(key uint64, res *Result, domHash, cssHash uint64, now time.Time) int {
	evicted := 0
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		evicted = c.evict()
	}
	c.tick++
	c.entries[key] = &cacheEntry{
		result:     res.Clone(),
		createdAt:  now,
		accesses:   1,
		lastAccess: c.tick,
		domHash:    domHash,
		cssHash:    cssHash,
	}
	return evicted
}

func (c *resultCache) evict() int {
	n := len(c.entries) / 4
	if n < 1 {
		n = 1
	}
	type aged struct {
		key  uint64
		tick uint64
	}
	order := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		order = append(order, aged{k, e.lastAccess})
	}
	sort.Slice(order, func(i, j int) bool { return order[i].tick < order[j].tick })
	for _, a := range order[:n] {
		delete(c.entries, a.key)
	}
	return n
}

func (c *resultCache) clear() {
	c.entries = make(map[uint64]*cacheEntry)
	c.tick = 0
}

func (c *resultCache) len() int { return len(c.entries) }
