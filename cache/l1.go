// api/cache/l1.go
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// L1Cache is the small, short-TTL, per-instance layer. It is consulted before
// L2 on every lookup and is the survival path when L2 degrades. Bounded
// capacity with LRU eviction; a single short TTL bounds how long it may
// disagree with L2.
type L1Cache struct {
	lru *expirable.LRU[string, []byte]
}

func NewL1Cache(maxCapacity int, ttl time.Duration) *L1Cache {
	return &L1Cache{
		lru: expirable.NewLRU[string, []byte](maxCapacity, nil, ttl),
	}
}

func (c *L1Cache) Get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

func (c *L1Cache) Set(key string, value []byte) {
	c.lru.Add(key, value)
}

func (c *L1Cache) Invalidate(key string) {
	c.lru.Remove(key)
}

func (c *L1Cache) Len() int {
	return c.lru.Len()
}
