package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item struct {
	data      interface{}
	expiresAt time.Time
}

// Cache is a TTL wrapper over a fixed-size LRU.
type Cache struct {
	lruCache *lru.Cache[string, item]
}

func New(size int) (*Cache, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lruCache: l}, nil
}

func (c *Cache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, item{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	})
}

// Get returns the cached value, or false when absent or expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil, false
	}

	if time.Now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return nil, false
	}

	return val.data, true
}

func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}
