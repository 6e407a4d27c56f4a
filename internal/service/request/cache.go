package request

import (
	"sync"

	"github.com/cmlabs-hris/attendance-client/internal/domain/request"
)

// listCache is the last listing the view was shown, kept in the order the server returned it.
type listCache[T request.Item] struct {
	mu     sync.RWMutex
	items  []T
	filter request.ListFilter
	loaded bool
}

func (c *listCache[T]) set(items []T, filter request.ListFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
	c.filter = filter
	c.loaded = true
}

func (c *listCache[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

func (c *listCache[T]) lastFilter() (request.ListFilter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter, c.loaded
}

func (c *listCache[T]) find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.RequestID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// upsert replaces the cached copy of item, adds it when new, and drops it once it
// no longer matches the filter of the current listing.
func (c *listCache[T]) upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return
	}

	idx := -1
	for i, existing := range c.items {
		if existing.RequestID() == item.RequestID() {
			idx = i
			break
		}
	}

	switch {
	case !c.filter.Matches(item) && idx >= 0:
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	case !c.filter.Matches(item):
	case idx >= 0:
		c.items[idx] = item
	default:
		c.items = append([]T{item}, c.items...)
	}
}

func (c *listCache[T]) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.items {
		if existing.RequestID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *listCache[T]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.filter = request.ListFilter{}
	c.loaded = false
}
