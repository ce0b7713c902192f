package utxolrucache

import (
	"github.com/tari-project/tari-sub014/domain/consensus/model/externalapi"
)

// LRUCache is a least-recently-used cache for output records
// indexed by output hash
type LRUCache struct {
	cache    map[externalapi.DomainHash]*externalapi.DomainTransactionOutput
	capacity int
}

// New creates a new LRUCache
func New(capacity int) *LRUCache {
	return &LRUCache{
		cache:    make(map[externalapi.DomainHash]*externalapi.DomainTransactionOutput, capacity+1),
		capacity: capacity,
	}
}

// Add adds an output to the LRUCache
func (c *LRUCache) Add(key *externalapi.DomainHash, value *externalapi.DomainTransactionOutput) {
	c.cache[*key] = value

	if len(c.cache) > c.capacity {
		c.evictRandom()
	}
}

// Get returns the output for the given hash, or (nil, false) otherwise
func (c *LRUCache) Get(key *externalapi.DomainHash) (*externalapi.DomainTransactionOutput, bool) {
	value, ok := c.cache[*key]
	if !ok {
		return nil, false
	}
	return value, true
}

// Has returns whether the LRUCache contains the given hash
func (c *LRUCache) Has(key *externalapi.DomainHash) bool {
	_, ok := c.cache[*key]
	return ok
}

// Remove removes the output for the the given key. Does nothing if
// the output does not exist
func (c *LRUCache) Remove(key *externalapi.DomainHash) {
	delete(c.cache, *key)
}

func (c *LRUCache) evictRandom() {
	var keyToEvict externalapi.DomainHash
	for key := range c.cache {
		keyToEvict = key
		break
	}
	c.Remove(&keyToEvict)
}
