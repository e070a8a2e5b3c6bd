// Package modelcache memoizes expensive backend handles for the lifetime of the process.
//
// Entries are insert-if-absent: nothing is evicted, replaced or expired. The number of
// keys is bounded by the finite language tables, which bounds memory use.
package modelcache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory acquires the value for one key. It runs at most once per key unless it fails.
type Factory[V any] func(ctx context.Context) (V, error)

// Cache is safe for concurrent use. The zero value is not usable; call New.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	loads   singleflight.Group
}

func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// GetOrCreate returns the stored value for key, invoking factory on the first request.
// Concurrent callers on a cold key wait for the single in-flight load and share its
// result. The load keeps running when a waiter's ctx ends; that waiter alone returns
// ctx.Err(). A failed load is not stored, so a later call runs factory again.
func (c *Cache[V]) GetOrCreate(ctx context.Context, key string, factory Factory[V]) (V, bool, error) {
	var zero V
	if c == nil {
		return zero, false, fmt.Errorf("model cache is not initialized")
	}
	if factory == nil {
		return zero, false, fmt.Errorf("factory is required for key %q", key)
	}

	if value, ok := c.lookup(key); ok {
		return value, true, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.loads.DoChan(key, func() (any, error) {
		if value, ok := c.lookup(key); ok {
			return value, nil
		}

		value, err := factory(loadCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = value
		c.mu.Unlock()
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		value, _ := res.Val.(V)
		return value, false, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

// Len returns the number of stored entries.
func (c *Cache[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the stored keys in sorted order.
func (c *Cache[V]) Keys() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}
