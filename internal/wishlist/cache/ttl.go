package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// TTLCache is an in-process cache with lazy expiry. Expired entries are
// dropped when read; there is no background sweep.
type TTLCache[V any] struct {
	mu      sync.Mutex
	name    string
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
	bounded *lru.Cache[string, entry[V]]
}

// Option configures a TTLCache.
type Option func(*ttlOptions)

type ttlOptions struct {
	name       string
	now        func() time.Time
	maxEntries int
}

// WithName labels the cache in metrics.
func WithName(name string) Option {
	return func(o *ttlOptions) { o.name = name }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *ttlOptions) { o.now = now }
}

// WithMaxEntries bounds the cache; the least recently used entry is evicted
// once the bound is reached. Zero keeps the cache unbounded.
func WithMaxEntries(n int) Option {
	return func(o *ttlOptions) { o.maxEntries = n }
}

// NewTTLCache creates a cache whose entries live for ttl.
func NewTTLCache[V any](ttl time.Duration, opts ...Option) *TTLCache[V] {
	o := ttlOptions{name: "default", now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &TTLCache[V]{
		name: o.name,
		ttl:  ttl,
		now:  o.now,
	}

	if o.maxEntries > 0 {
		bounded, err := lru.New[string, entry[V]](o.maxEntries)
		if err != nil {
			panic(err)
		}
		c.bounded = bounded
	} else {
		c.entries = make(map[string]entry[V])
	}

	return c
}

// Get implements Cache.
func (c *TTLCache[V]) Get(_ context.Context, key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.lookup(key)
	if !ok {
		recordLookup(c.name, false)
		return zero, false
	}

	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.remove(key)
		recordLookup(c.name, false)
		return zero, false
	}

	recordLookup(c.name, true)
	return e.value, true
}

// Set implements Cache.
func (c *TTLCache[V]) Set(_ context.Context, key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry[V]{value: value, insertedAt: c.now()}
	if c.bounded != nil {
		if evicted := c.bounded.Add(key, e); evicted {
			cacheEvictionsTotal.WithLabelValues(c.name).Inc()
		}
		return
	}
	c.entries[key] = e
}

// Delete implements Cache.
func (c *TTLCache[V]) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// Clear implements Cache.
func (c *TTLCache[V]) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bounded != nil {
		c.bounded.Purge()
		return
	}
	c.entries = make(map[string]entry[V])
}

// Len returns the number of stored entries, expired ones included.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bounded != nil {
		return c.bounded.Len()
	}
	return len(c.entries)
}

func (c *TTLCache[V]) lookup(key string) (entry[V], bool) {
	if c.bounded != nil {
		return c.bounded.Get(key)
	}
	e, ok := c.entries[key]
	return e, ok
}

func (c *TTLCache[V]) remove(key string) {
	if c.bounded != nil {
		c.bounded.Remove(key)
		return
	}
	delete(c.entries, key)
}
