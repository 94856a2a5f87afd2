// Package query implements the shared stale-while-revalidate cache behind
// the catalog and cart reads. Entries are keyed by (endpoint, tenant,
// serialized filters); a bounded expirable LRU provides the garbage-collect
// window and singleflight deduplicates concurrent fetches per key.
package query

import (
	"context"
	"sync"
	"time"

	"keyfront/internal/logger"
	"keyfront/internal/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the value for a key from the backend.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Result is the tri-state view of a cache slot. Err and Data can be non-zero
// at the same time: a failed refetch never clears the last good data.
type Result[V any] struct {
	Data     V
	HasData  bool
	Err      error
	Fetching bool
}

// Loading reports the initial-load state: nothing to show yet and a fetch in
// flight. Distinct from Fetching, which is also true during revalidation.
func (r Result[V]) Loading() bool {
	return !r.HasData && r.Fetching
}

type entry[V any] struct {
	data      V
	hasData   bool
	err       error
	fetchedAt time.Time
}

type Cache[V any] struct {
	name       string
	staleAfter time.Duration

	mu       sync.Mutex
	entries  *expirable.LRU[string, *entry[V]]
	inflight map[string]int

	group singleflight.Group
	stats metrics.CacheStats
}

// New creates a cache holding up to size keys. Entries are served fresh for
// staleAfter, then served stale while a background refetch runs, and dropped
// entirely once evictAfter passes without a rewrite.
func New[V any](name string, size int, staleAfter, evictAfter time.Duration) *Cache[V] {
	return &Cache[V]{
		name:       name,
		staleAfter: staleAfter,
		entries:    expirable.NewLRU[string, *entry[V]](size, nil, evictAfter),
		inflight:   make(map[string]int),
	}
}

// Get returns the cached value for key, fetching it when missing. A fresh
// entry is returned as-is; a stale entry is returned immediately while a
// background revalidation runs; a miss blocks on the fetch.
func (c *Cache[V]) Get(ctx context.Context, key string, fetch FetchFunc[V]) Result[V] {
	c.mu.Lock()
	e, ok := c.entries.Get(key)
	fetching := c.inflight[key] > 0

	if ok && e.hasData && time.Since(e.fetchedAt) < c.staleAfter {
		c.stats.Hits.Inc()
		res := Result[V]{Data: e.data, HasData: true, Err: e.err, Fetching: fetching}
		c.mu.Unlock()
		return res
	}

	if ok && e.hasData {
		c.stats.Stale.Inc()
		res := Result[V]{Data: e.data, HasData: true, Err: e.err, Fetching: true}
		c.mu.Unlock()
		c.revalidate(ctx, key, fetch)
		return res
	}

	c.stats.Misses.Inc()
	c.mu.Unlock()

	data, err := c.fetch(ctx, key, fetch)
	if err != nil {
		return Result[V]{Err: err}
	}
	return Result[V]{Data: data, HasData: true}
}

// Peek returns the current slot state without triggering any fetch.
func (c *Cache[V]) Peek(key string) Result[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := Result[V]{Fetching: c.inflight[key] > 0}
	if e, ok := c.entries.Get(key); ok {
		res.Data = e.data
		res.HasData = e.hasData
		res.Err = e.err
	}
	return res
}

// Update applies fn to the slot's current value under the cache lock and
// stores the result. This is the only write path open to application code
// (the optimistic cart mutation). Stored values are treated as immutable:
// fn must return a fresh value, never mutate current in place.
func (c *Cache[V]) Update(key string, fn func(current V, ok bool) V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	var cur V
	has := false
	fetchedAt := time.Now()
	if e, ok := c.entries.Get(key); ok {
		cur, has = e.data, e.hasData
		if !e.fetchedAt.IsZero() {
			fetchedAt = e.fetchedAt
		}
	}

	next := fn(cur, has)
	c.entries.Add(key, &entry[V]{data: next, hasData: true, fetchedAt: fetchedAt})
	return next
}

// Set replaces the slot's value wholesale, keeping its freshness clock.
// Used to restore a pre-mutation snapshot on rollback.
func (c *Cache[V]) Set(key string, data V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fetchedAt := time.Now()
	if e, ok := c.entries.Get(key); ok && !e.fetchedAt.IsZero() {
		fetchedAt = e.fetchedAt
	}
	c.entries.Add(key, &entry[V]{data: data, hasData: true, fetchedAt: fetchedAt})
}

// Refresh forces a blocking refetch regardless of freshness, e.g. after a
// network reconnect. The slot keeps its old data if the fetch fails.
func (c *Cache[V]) Refresh(ctx context.Context, key string, fetch FetchFunc[V]) Result[V] {
	if _, err := c.fetch(ctx, key, fetch); err != nil {
		res := c.Peek(key)
		res.Err = err
		return res
	}
	return c.Peek(key)
}

// Invalidate drops the slot for key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(key)
}

// Stats exposes the cache's hit/miss counters.
func (c *Cache[V]) Stats() *metrics.CacheStats {
	return &c.stats
}

// fetch runs the deduplicated network load for key and records the outcome.
func (c *Cache[V]) fetch(ctx context.Context, key string, fn FetchFunc[V]) (V, error) {
	c.markInflight(key, 1)
	defer c.markInflight(key, -1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.stats.Fetches.Inc()
		data, err := fn(ctx)
		c.store(key, data, err)
		if err != nil {
			c.stats.Errors.Inc()
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// revalidate refreshes a stale slot in the background. The fetch is detached
// from the caller's context so an unmounting page does not cancel it.
func (c *Cache[V]) revalidate(ctx context.Context, key string, fn FetchFunc[V]) {
	bg := context.WithoutCancel(ctx)
	go func() {
		if _, err := c.fetch(bg, key, fn); err != nil {
			logger.L().Warn("background revalidation failed",
				zap.String("cache", c.name),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}()
}

// store writes a fetch outcome. A failed fetch keeps the last good data and
// its freshness clock so the error stays visible next to stale data and the
// next read revalidates again.
func (c *Cache[V]) store(key string, data V, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		next := &entry[V]{err: err}
		if prev, ok := c.entries.Get(key); ok {
			next.data = prev.data
			next.hasData = prev.hasData
			next.fetchedAt = prev.fetchedAt
		}
		c.entries.Add(key, next)
		return
	}
	c.entries.Add(key, &entry[V]{data: data, hasData: true, fetchedAt: time.Now()})
}

func (c *Cache[V]) markInflight(key string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inflight[key] += delta
	if c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
}
