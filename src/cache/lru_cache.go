// Package cache provides the small LRU+TTL cache shared by the completion
// memoizer and the public-data lookup tools.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// CacheEntry pairs a cached value with its expiry. Exported so callers can
// persist and restore cache contents.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// LRUCache is a fixed-capacity cache with per-entry TTL. Safe for concurrent
// use.
type LRUCache struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List // front is most recently used
}

type node struct {
	key   string
	entry CacheEntry
}

// NewLRUCache creates a cache holding at most capacity entries, each living
// for ttl after its last Set.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the value for key when present and unexpired. Expired entries
// are dropped on access.
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	n := elem.Value.(*node)
	if time.Now().After(n.entry.ExpiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return n.entry.Value, true
}

// Set stores value under key, resetting its TTL and evicting the least
// recently used entry when over capacity.
func (c *LRUCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := CacheEntry{Value: value, ExpiresAt: time.Now().Add(c.ttl)}

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*node).entry = entry
		return
	}

	c.items[key] = c.order.PushFront(&node{key: key, entry: entry})
	c.evictOverCapacity()
}

// Clear drops every entry.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

// Len reports the number of stored entries, expired ones included.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// HashKey derives a stable cache key from arbitrary text.
func HashKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Dump snapshots the cache contents for persistence.
func (c *LRUCache) Dump() map[string]CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dump := make(map[string]CacheEntry, len(c.items))
	for key, elem := range c.items {
		dump[key] = elem.Value.(*node).entry
	}
	return dump
}

// Restore replaces the cache contents with a previously dumped snapshot,
// skipping entries that expired in the meantime.
func (c *LRUCache) Restore(dump map[string]CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element, c.capacity)

	now := time.Now()
	for key, entry := range dump {
		if now.After(entry.ExpiresAt) {
			continue
		}
		c.items[key] = c.order.PushFront(&node{key: key, entry: entry})
	}
	c.evictOverCapacity()
}

func (c *LRUCache) evictOverCapacity() {
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*node).key)
	}
}
