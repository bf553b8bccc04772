// Package cache implements a fixed-capacity map with least-recently-used
// eviction, used for the engine's metadata, value and badge caches.
package cache

import "container/list"

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a bounded LRU map. It is not safe for concurrent use; callers
// serialize access (the engine guards all three caches with one mutex).
type Cache[K comparable, V any] struct {
	capacity int
	order    *list.List // front is most recently used
	items    map[K]*list.Element
}

// New creates a cache with the given capacity. Capacities below 1 clamp to 1.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Get returns the value for key and promotes it to most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry[K, V]).value, true
}

// Peek returns the value for key without promoting it.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	return el.Value.(*entry[K, V]).value, true
}

// Has reports presence without promoting.
func (c *Cache[K, V]) Has(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Set inserts or overwrites the value for key and promotes it to most
// recently used. Inserting a new key at capacity evicts the single least
// recently used entry first. Overwriting never evicts.
func (c *Cache[K, V]) Set(key K, value V) {
	if el, ok := c.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[K, V]).key)
		}
	}
	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// Delete removes key unconditionally. Removing an absent key is a no-op.
func (c *Cache[K, V]) Delete(key K) bool {
	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.items, key)
	return true
}

// Clear empties the cache.
func (c *Cache[K, V]) Clear() {
	c.order.Init()
	clear(c.items)
}

// Len reports the current entry count.
func (c *Cache[K, V]) Len() int {
	return c.order.Len()
}

// Capacity reports the fixed capacity.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}
