package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestMemoryExpiresAfterTTL(t *testing.T) {
	clock := newTestClock()
	c := NewMemory[string](time.Hour, WithClock(clock.Now))

	c.SetWithTTL("dfa|renew passport|taglish", "Guide text...", 3600000*time.Millisecond)

	got, ok := c.Get("dfa|renew passport|taglish")
	require.True(t, ok)
	require.Equal(t, "Guide text...", got)

	clock.Advance(3600001 * time.Millisecond)
	_, ok = c.Get("dfa|renew passport|taglish")
	require.False(t, ok)
	require.Equal(t, 0, c.Len(), "expired entry removed on read")
}

func TestMemoryLiveAtExactExpiry(t *testing.T) {
	clock := newTestClock()
	c := NewMemory[int](time.Minute, WithClock(clock.Now))
	c.Set("k", 1)

	clock.Advance(time.Minute)
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestMemoryDefaultTTL(t *testing.T) {
	require.Equal(t, DefaultTTL, NewMemory[string](0).TTL())
	require.Equal(t, DefaultTTL, NewMemory[string](-time.Second).TTL())
}

func TestMemoryOverwriteRefreshesExpiry(t *testing.T) {
	clock := newTestClock()
	c := NewMemory[string](time.Minute, WithClock(clock.Now))

	c.Set("k", "v1")
	clock.Advance(50 * time.Second)
	c.Set("k", "v2")
	clock.Advance(50 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v2", got)
	require.Equal(t, 1, c.Len())
}

func TestMemoryCapEvictsOldest(t *testing.T) {
	c := NewMemory[int](time.Hour)

	for i := 0; i < 1001; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}

	require.LessOrEqual(t, c.Len(), DefaultMaxEntries)
	_, ok := c.Get("key-0")
	require.False(t, ok, "oldest entry evicted")
	v, ok := c.Get("key-1000")
	require.True(t, ok)
	require.Equal(t, 1000, v)
	require.Equal(t, 801, c.Len())
}

func TestMemoryCustomCapacity(t *testing.T) {
	c := NewMemory[int](time.Hour, WithMaxEntries(10), WithEvictBatch(3))
	for i := 0; i < 50; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
		require.LessOrEqual(t, c.Len(), 10)
	}
}

func TestMemoryPurge(t *testing.T) {
	clock := newTestClock()
	c := NewMemory[string](time.Minute, WithClock(clock.Now))
	c.Set("a", "1")
	clock.Advance(30 * time.Second)
	c.Set("b", "2")
	clock.Advance(31 * time.Second)

	require.Equal(t, 1, c.Purge())
	require.Equal(t, 1, c.Len())
}

func TestMemoryConcurrentAccess(t *testing.T) {
	c := NewMemory[int](time.Hour, WithMaxEntries(100), WithEvictBatch(20))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("%d-%d", g, i%150)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	require.LessOrEqual(t, c.Len(), 100)
}

func TestAsStore(t *testing.T) {
	ctx := context.Background()
	s := AsStore(NewMemory[string](time.Hour))

	_, ok := s.Get(ctx, "missing")
	require.False(t, ok)

	s.Set(ctx, "k", "v")
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", got)
	require.Equal(t, 1, s.Len(ctx))
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, GenerateKey("a", "b"), GenerateKey("A", " b "))
	assert.Equal(t, GenerateKey("a", "b"), GenerateKey("a", "", "b"))
	assert.Equal(t, "a|b", GenerateKey("a", "  ", "b"))
	assert.NotEqual(t, GenerateKey("a", "b"), GenerateKey("b", "a"))
	assert.Equal(t, "guide|dfa|renew passport|taglish", GenerateKey("guide", "DFA", "Renew Passport", "taglish"))
	assert.Equal(t, "", GenerateKey())
}
