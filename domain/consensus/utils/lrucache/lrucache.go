package lrucache

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
)

// LRUCache is a bounded cache of blocks indexed by block hash. Once full, an
// arbitrary entry is evicted for every new one.
type LRUCache struct {
	cache    map[externalapi.DomainHash]*externalapi.DomainBlock
	capacity int
}

// New creates a new LRUCache
func New(capacity int) *LRUCache {
	return &LRUCache{
		cache:    make(map[externalapi.DomainHash]*externalapi.DomainBlock, capacity+1),
		capacity: capacity,
	}
}

// Add adds an entry to the LRUCache
func (c *LRUCache) Add(key *externalapi.DomainHash, value *externalapi.DomainBlock) {
	if c.capacity <= 0 {
		return
	}
	c.cache[*key] = value

	if len(c.cache) > c.capacity {
		c.evictRandom(key)
	}
}

// Get returns the entry for the given key, or (nil, false) otherwise
func (c *LRUCache) Get(key *externalapi.DomainHash) (*externalapi.DomainBlock, bool) {
	value, ok := c.cache[*key]
	return value, ok
}

// Has returns whether the LRUCache contains the given key
func (c *LRUCache) Has(key *externalapi.DomainHash) bool {
	_, ok := c.cache[*key]
	return ok
}

// Remove removes the entry for the the given key. Does nothing if
// the entry does not exist
func (c *LRUCache) Remove(key *externalapi.DomainHash) {
	delete(c.cache, *key)
}

// Len returns the number of cached entries
func (c *LRUCache) Len() int {
	return len(c.cache)
}

func (c *LRUCache) evictRandom(keep *externalapi.DomainHash) {
	for key := range c.cache {
		if key == *keep {
			continue
		}
		c.Remove(&key)
		return
	}
}
