// Package scratch caches transient device buffers across calls so hot-path
// primitives never reallocate. Capacity per key only grows, trading peak
// memory for zero allocation churn.
package scratch

import (
	"fmt"

	"github.com/slate-ml/slate/internal/primitive"
)

// Allocator is the slice of a backend the cache needs to manage buffers.
type Allocator interface {
	Allocate(dtype primitive.DataType, n int) (primitive.Buffer, error)
	Free(b primitive.Buffer) error
}

type entry struct {
	buf      primitive.Buffer
	dtype    primitive.DataType
	capacity int // elements
}

// Cache holds one growth-only buffer per logical purpose, keyed by call
// site ("topk-keys", "gemm-batch-a", ...). A request for n <= capacity
// reuses the buffer; n > capacity frees it and allocates n.
//
// A Cache belongs to exactly one backend instance and, like the instance,
// to one worker goroutine; it is not safe for concurrent use.
type Cache struct {
	alloc   Allocator
	entries map[string]*entry

	hits   uint64
	misses uint64
	grows  uint64
}

// New creates an empty cache backed by alloc.
func New(alloc Allocator) *Cache {
	return &Cache{
		alloc:   alloc,
		entries: make(map[string]*entry),
	}
}

// Get returns a device buffer with room for at least n elements of dtype.
// The buffer stays owned by the cache; callers must not free it and must
// be done with it before requesting the same key again.
func (c *Cache) Get(key string, dtype primitive.DataType, n int) (primitive.Buffer, error) {
	e, ok := c.entries[key]
	if ok && e.dtype == dtype && e.capacity >= n {
		c.hits++
		return e.buf, nil
	}

	if ok {
		c.grows++
		if err := c.alloc.Free(e.buf); err != nil {
			return nil, fmt.Errorf("scratch: freeing %q: %w", key, err)
		}
		delete(c.entries, key)
	} else {
		c.misses++
	}

	buf, err := c.alloc.Allocate(dtype, n)
	if err != nil {
		return nil, fmt.Errorf("scratch: growing %q to %d elements: %w", key, n, err)
	}
	c.entries[key] = &entry{buf: buf, dtype: dtype, capacity: n}
	return buf, nil
}

// Capacity returns the cached element capacity for key, or 0.
func (c *Cache) Capacity(key string) int {
	if e, ok := c.entries[key]; ok {
		return e.capacity
	}
	return 0
}

// Stats returns hit, miss and grow counts.
func (c *Cache) Stats() (hits, misses, grows uint64) {
	return c.hits, c.misses, c.grows
}

// Release frees every cached buffer. Called from the backend's Close.
func (c *Cache) Release() error {
	var firstErr error
	for key, e := range c.entries {
		if err := c.alloc.Free(e.buf); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("scratch: releasing %q: %w", key, err)
		}
		delete(c.entries, key)
	}
	return firstErr
}
