package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// Cache keeps a bounded set of slot keyed lookups, the bound finder stores the
// execution block number it resolved for a slot here.
type Cache interface {
	Get(slot uint64) (uint64, bool)
	Set(slot uint64, value uint64)
	Len() int
}

type LocalCache struct {
	lru *lru.Cache
}

func NewLocalCache(size uint64) (Cache, error) {
	c, err := lru.New(int(size))
	if err != nil {
		return nil, err
	}
	return &LocalCache{lru: c}, nil
}

func (c *LocalCache) Get(slot uint64) (uint64, bool) {
	v, ok := c.lru.Get(slot)
	if !ok {
		return 0, false
	}
	return v.(uint64), true
}

func (c *LocalCache) Set(slot uint64, value uint64) {
	c.lru.Add(slot, value)
}

func (c *LocalCache) Len() int {
	return c.lru.Len()
}
