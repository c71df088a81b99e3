// Package cache holds the in-memory entity collections kept per session.
package cache

import (
	"sync"
	"time"
)

// Collection is a keyed, ordered list of entities. Writers either patch a
// single entry (optimistic update) or replace the whole list (reconcile).
type Collection[T any] struct {
	mu        sync.RWMutex
	items     []T
	key       func(T) string
	loaded    bool
	fetchedAt time.Time
}

func NewCollection[T any](key func(T) string) *Collection[T] {
	return &Collection[T]{key: key}
}

// Items returns a snapshot of the collection.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Loaded reports whether the collection has been filled by a fetch.
func (c *Collection[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Collection[T]) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.key(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Replace swaps in the authoritative list from the store.
func (c *Collection[T]) Replace(items []T) {
	next := make([]T, len(items))
	copy(next, items)

	c.mu.Lock()
	c.items = next
	c.loaded = true
	c.fetchedAt = time.Now()
	c.mu.Unlock()
}

// Add puts item at the front of the list, replacing any entry with the same key.
func (c *Collection[T]) Add(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.key(item)
	next := make([]T, 0, len(c.items)+1)
	next = append(next, item)
	for _, existing := range c.items {
		if c.key(existing) != id {
			next = append(next, existing)
		}
	}
	c.items = next
}

// Patch replaces the entry with the given key by fn(old). It reports whether
// an entry was found.
func (c *Collection[T]) Patch(id string, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if c.key(item) == id {
			c.items[i] = fn(item)
			return true
		}
	}
	return false
}

func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if c.key(item) == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Collection[T]) Clear() {
	c.mu.Lock()
	c.items = nil
	c.loaded = false
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
