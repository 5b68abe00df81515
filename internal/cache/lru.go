// Package cache provides a bounded, expiring LRU map. The delivery worker
// uses it to remember which notifications it already sent, so a message the
// broker redelivers is not pushed to the chat twice.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a fixed-size cache whose entries also expire after a TTL.
// A zero TTL keeps entries until they are evicted by size.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	items   map[string]*list.Element
	order   *list.List
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

func NewLRU[T any](maxSize int, ttl time.Duration) *LRU[T] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LRU[T]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the live value stored under key and marks it recently used.
func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if c.expired(e) {
		c.remove(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry when full.
func (c *LRU[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}

	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(e)
	if c.order.Len() > c.maxSize {
		c.remove(c.order.Back())
	}
}

func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// Len counts stored entries, expired ones included until they are touched
// or cleaned.
func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CleanExpired removes all expired entries and returns how many it dropped.
func (c *LRU[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(*entry[T])) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *LRU[T]) expired(e *entry[T]) bool {
	return c.ttl > 0 && c.now().After(e.expiresAt)
}

func (c *LRU[T]) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}
