package weather

import (
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(location string) *domain.WeatherSnapshot {
	return &domain.WeatherSnapshot{Location: location}
}

func TestCache_GetSet(t *testing.T) {
	c := NewCache(time.Minute, 10, clockwork.NewFakeClock())

	c.Set("tokyo", snap("Tokyo, Japan"))

	got, ok := c.Get("tokyo")
	require.True(t, ok)
	assert.Equal(t, "Tokyo, Japan", got.Location)

	_, ok = c.Get("paris")
	assert.False(t, ok)
}

func TestCache_TTLBoundary(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ttl := 30 * time.Minute
	c := NewCache(ttl, 10, clock)

	c.Set("tokyo", snap("Tokyo, Japan"))

	clock.Advance(ttl - time.Second)
	_, ok := c.Get("tokyo")
	assert.True(t, ok, "entry should be fresh just before the TTL")
	assert.True(t, c.Has("tokyo"))

	clock.Advance(2 * time.Second)
	_, ok = c.Get("tokyo")
	assert.False(t, ok, "entry should be absent just after the TTL")
	assert.False(t, c.Has("tokyo"))
	assert.Equal(t, 0, c.Len(), "stale entry should be evicted on read")
}

func TestCache_HasEvictsStaleEntry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(time.Minute, 10, clock)

	c.Set("rome", snap("Rome, Italy"))
	clock.Advance(time.Minute)

	assert.False(t, c.Has("rome"))
	assert.Equal(t, 0, c.Len())
}

func TestCache_SetRefreshesTimestamp(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewCache(time.Minute, 10, clock)

	c.Set("rome", snap("v1"))
	clock.Advance(50 * time.Second)
	c.Set("rome", snap("v2"))
	clock.Advance(50 * time.Second)

	got, ok := c.Get("rome")
	require.True(t, ok)
	assert.Equal(t, "v2", got.Location)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(time.Minute, 10, clockwork.NewFakeClock())
	c.Set("a", snap("A"))
	c.Set("b", snap("B"))

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Has("a"))
}

func TestCache_LRUEviction(t *testing.T) {
	c := NewCache(time.Hour, 2, clockwork.NewFakeClock())

	c.Set("a", snap("A"))
	c.Set("b", snap("B"))
	c.Get("a")            // promote a
	c.Set("c", snap("C")) // evicts b

	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("b"), "b should have been evicted")
	assert.True(t, c.Has("c"))
	assert.Equal(t, 2, c.Len())
}

func TestCache_Defaults(t *testing.T) {
	c := NewCache(0, 0, nil)
	assert.Equal(t, DefaultTTL, c.ttl)

	for i := 0; i < 100; i++ {
		c.Set(string(rune('a'+i%26))+string(rune('a'+i/26)), snap("x"))
	}
	assert.Equal(t, 100, c.Len(), "zero maxEntries means unbounded")
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(time.Minute, 50, clockwork.NewFakeClock())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%5))
			for j := 0; j < 100; j++ {
				c.Set(key, snap(key))
				c.Get(key)
				c.Has(key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, c.Len())
}
