package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache bounds memory two ways: every entry carries a TTL, and when the
// size cap is hit the least recently used entry is evicted.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	byKey   map[string]*list.Element
	order   *list.List // front = most recently used
}

type entry[T any] struct {
	key      string
	value    T
	deadline time.Time
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		byKey:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached value for key, treating expired entries as misses
// and dropping them on the spot.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.byKey[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[T])
	if time.Now().After(e.deadline) {
		c.remove(elem)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key, refreshing the TTL. Inserting past the size
// cap evicts the least recently used entry.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value, deadline: time.Now().Add(c.ttl)}

	if elem, ok := c.byKey[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}

	c.byKey[key] = c.order.PushFront(e)
	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Purge drops every entry.
func (c *LRUCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byKey = make(map[string]*list.Element)
	c.order.Init()
}

// SweepExpired removes all expired entries and reports how many went.
func (c *LRUCache[T]) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var stale []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[T]).deadline) {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		c.remove(elem)
	}
	return len(stale)
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

// remove expects the lock to be held.
func (c *LRUCache[T]) remove(elem *list.Element) {
	delete(c.byKey, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}
