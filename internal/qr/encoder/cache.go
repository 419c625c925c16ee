package encoder

import (
	"container/list"
	"sync"
)

type cacheKey struct {
	payload string
	level   Level
}

type cacheEntry struct {
	key    cacheKey
	matrix *Matrix
}

// Cache memoizes Encode results with least-recently-used eviction.
// Matrices are immutable, so cached values are shared between callers.
type Cache struct {
	capacity int
	items    map[cacheKey]*list.Element
	eviction *list.List
	mu       sync.Mutex

	hits, misses uint64
}

// NewCache creates a cache holding up to capacity matrices.
// The capacity must be positive, otherwise it panics.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		panic("matrix cache capacity must be positive")
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[cacheKey]*list.Element),
		eviction: list.New(),
	}
}

// Encode returns the cached matrix for (payload, level), encoding and
// storing it on a miss. Errors are not cached.
func (c *Cache) Encode(payload string, level Level) (*Matrix, error) {
	key := cacheKey{payload: payload, level: level}

	c.mu.Lock()
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		c.hits++
		m := elem.Value.(*cacheEntry).matrix
		c.mu.Unlock()
		return m, nil
	}
	c.misses++
	c.mu.Unlock()

	m, err := Encode(payload, level)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		return elem.Value.(*cacheEntry).matrix, nil
	}
	c.items[key] = c.eviction.PushFront(&cacheEntry{key: key, matrix: m})
	if c.eviction.Len() > c.capacity {
		oldest := c.eviction.Back()
		c.eviction.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
	return m, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
