package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notikit/notikit/pkg/cache"
)

func TestTTLCache_PutGet(t *testing.T) {
	t.Parallel()

	c := cache.NewTTLCache[string, int](time.Minute)

	c.Put("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	t.Parallel()

	c := cache.NewTTLCache[string, string](10 * time.Millisecond)

	c.Put("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire after TTL")
}

func TestTTLCache_PutIfAbsent(t *testing.T) {
	t.Parallel()

	c := cache.NewTTLCache[string, struct{}](20 * time.Millisecond)

	assert.True(t, c.PutIfAbsent("once", struct{}{}), "first insert wins")
	assert.False(t, c.PutIfAbsent("once", struct{}{}), "repeat within window is rejected")

	time.Sleep(30 * time.Millisecond)

	assert.True(t, c.PutIfAbsent("once", struct{}{}), "insert succeeds again after expiry")
}

func TestTTLCache_Remove(t *testing.T) {
	t.Parallel()

	c := cache.NewTTLCache[string, int](time.Minute)

	c.Put("k", 7)
	assert.True(t, c.Remove("k"))
	assert.False(t, c.Remove("k"))

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestTTLCache_Cleanup(t *testing.T) {
	t.Parallel()

	c := cache.NewTTLCache[int, int](10 * time.Millisecond)
	for i := range 5 {
		c.Put(i, i)
	}
	require.Equal(t, 5, c.Len())

	time.Sleep(20 * time.Millisecond)
	c.Put(99, 99)

	purged := c.Cleanup()
	assert.Equal(t, 5, purged)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCache_Concurrency(t *testing.T) {
	t.Parallel()

	c := cache.NewTTLCache[int, int](time.Minute)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				c.Put(i*100+j, j)
				c.Get(i * 100)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, c.Len())
}
