// Package cache provides a bounded TTL cache for generated guides and the
// key builder used to address it.
package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTTL applies when a non-positive TTL is configured.
	DefaultTTL = time.Hour
	// DefaultMaxEntries bounds the in-memory cache.
	DefaultMaxEntries = 1000
	// DefaultEvictBatch is how many of the oldest entries are dropped when full.
	DefaultEvictBatch = 200
)

// Store is the storage contract used by the guide service.
//
// Implementations treat backend errors as misses; callers never see them.
type Store[T any] interface {
	Get(ctx context.Context, key string) (T, bool)
	Set(ctx context.Context, key string, value T)
	Len(ctx context.Context) int
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// Memory is an insertion-ordered TTL cache.
//
// Expiry is lazy: stale entries are removed on the Get that finds them.
// When the cache reaches MaxEntries, the EvictBatch oldest insertions are
// dropped before the new entry is added. Overwriting a key refreshes its
// value and expiry but keeps its original insertion position.
type Memory[T any] struct {
	ttl        time.Duration
	maxEntries int
	evictBatch int
	clock      func() time.Time

	mu    sync.Mutex
	order *list.List
	items map[string]*list.Element
}

// Option configures a Memory cache.
type Option func(*options)

type options struct {
	maxEntries int
	evictBatch int
	clock      func() time.Time
}

// WithMaxEntries sets the capacity.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithEvictBatch sets how many entries are evicted at capacity.
func WithEvictBatch(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.evictBatch = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// NewMemory returns an empty cache. A non-positive ttl uses DefaultTTL.
func NewMemory[T any](ttl time.Duration, opts ...Option) *Memory[T] {
	o := options{maxEntries: DefaultMaxEntries, evictBatch: DefaultEvictBatch, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if o.evictBatch > o.maxEntries {
		o.evictBatch = o.maxEntries
	}
	return &Memory[T]{
		ttl:        ttl,
		maxEntries: o.maxEntries,
		evictBatch: o.evictBatch,
		clock:      o.clock,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

// TTL returns the configured entry lifetime.
func (m *Memory[T]) TTL() time.Duration { return m.ttl }

// Get returns the value for key if present and unexpired.
func (m *Memory[T]) Get(key string) (T, bool) {
	var zero T
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return zero, false
	}
	ent := el.Value.(*entry[T])
	if now.After(ent.expiresAt) {
		m.order.Remove(el)
		delete(m.items, key)
		return zero, false
	}
	return ent.value, true
}

// Set stores value under key with expiry now+TTL.
func (m *Memory[T]) Set(key string, value T) {
	m.SetWithTTL(key, value, m.ttl)
}

// SetWithTTL stores value under key with expiry now+ttl. A non-positive ttl
// uses the cache default.
func (m *Memory[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.ttl
	}
	expiresAt := m.clock().Add(ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[key]; ok {
		ent := el.Value.(*entry[T])
		ent.value = value
		ent.expiresAt = expiresAt
		return
	}

	if m.order.Len() >= m.maxEntries {
		m.evictOldest(m.evictBatch)
	}
	m.items[key] = m.order.PushBack(&entry[T]{key: key, value: value, expiresAt: expiresAt})
}

// Len returns the number of stored entries, including expired ones not yet read.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Purge drops every expired entry and returns how many were removed.
func (m *Memory[T]) Purge() int {
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for el := m.order.Front(); el != nil; {
		next := el.Next()
		ent := el.Value.(*entry[T])
		if now.After(ent.expiresAt) {
			m.order.Remove(el)
			delete(m.items, ent.key)
			removed++
		}
		el = next
	}
	return removed
}

func (m *Memory[T]) evictOldest(n int) {
	for i := 0; i < n; i++ {
		el := m.order.Front()
		if el == nil {
			return
		}
		m.order.Remove(el)
		delete(m.items, el.Value.(*entry[T]).key)
	}
}

type memoryStore[T any] struct {
	m *Memory[T]
}

// AsStore adapts a Memory cache to the Store interface.
func AsStore[T any](m *Memory[T]) Store[T] {
	return memoryStore[T]{m: m}
}

func (s memoryStore[T]) Get(_ context.Context, key string) (T, bool) { return s.m.Get(key) }
func (s memoryStore[T]) Set(_ context.Context, key string, value T)  { s.m.Set(key, value) }
func (s memoryStore[T]) Len(_ context.Context) int                   { return s.m.Len() }

// GenerateKey builds a normalized cache key from request fields.
//
// Parts are trimmed, empty parts are skipped, and the rest are joined with
// "|" and lowercased. Keys are order-sensitive but case-insensitive.
func GenerateKey(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.ToLower(strings.Join(kept, "|"))
}
