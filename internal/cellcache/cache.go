// Package cellcache deduplicates synthesis. Cells are immutable value
// objects, so concurrent requests for the same spec key share one
// synthesis run and one cell instance.
package cellcache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/layout"
)

// SynthFunc produces the cell for a spec. The cache calls it at most
// once per spec key, however many goroutines ask.
type SynthFunc func(spec *device.Spec) (*layout.Cell, error)

// Cache memoizes synthesized cells by spec key. Failed synthesis is
// not cached: a later request for the same key retries.
type Cache struct {
	group singleflight.Group

	mu    sync.RWMutex
	cells map[string]*layout.Cell
}

func New() *Cache {
	return &Cache{cells: make(map[string]*layout.Cell)}
}

// Get returns the cell for spec, synthesizing it on first use. All
// concurrent callers with the same key block on one synthesis and
// receive the same instance.
func (c *Cache) Get(spec *device.Spec, synth SynthFunc) (*layout.Cell, error) {
	key := spec.Key()

	c.mu.RLock()
	cell, ok := c.cells[key]
	c.mu.RUnlock()
	if ok {
		return cell, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A second check under the group: the first flight may have
		// populated the map between our read and the Do call.
		c.mu.RLock()
		cell, ok := c.cells[key]
		c.mu.RUnlock()
		if ok {
			return cell, nil
		}

		cell, err := synth(spec)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cells[key] = cell
		c.mu.Unlock()
		return cell, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*layout.Cell), nil
}

// Peek returns the cached cell without synthesizing.
func (c *Cache) Peek(key string) (*layout.Cell, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cell, ok := c.cells[key]
	return cell, ok
}

// Len returns the number of cached cells.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cells)
}

// Reset drops every cached cell.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cells = make(map[string]*layout.Cell)
}
