package reconciler

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// WarningCache deduplicates deadline warnings. Keys are (match, deadline)
// pairs; an entry expiring re-arms the warning after the cooldown.
type WarningCache interface {
	Contains(key string) bool
	Add(key string)
}

// LRUWarningCache is a size-bounded, TTL-expiring WarningCache.
type LRUWarningCache struct {
	lru *expirable.LRU[string, struct{}]
}

// NewLRUWarningCache creates a cache holding up to size keys, each expiring
// after cooldown.
func NewLRUWarningCache(size int, cooldown time.Duration) *LRUWarningCache {
	if size <= 0 {
		size = DefaultWarningCacheSize
	}
	return &LRUWarningCache{
		lru: expirable.NewLRU[string, struct{}](size, nil, cooldown),
	}
}

func (c *LRUWarningCache) Contains(key string) bool {
	return c.lru.Contains(key)
}

func (c *LRUWarningCache) Add(key string) {
	c.lru.Add(key, struct{}{})
}
