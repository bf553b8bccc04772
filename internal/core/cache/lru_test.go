package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tally/internal/core/cache"
)

func TestNew_ClampsCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{name: "negative", capacity: -5, want: 1},
		{name: "zero", capacity: 0, want: 1},
		{name: "one", capacity: 1, want: 1},
		{name: "large", capacity: 1000, want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cache.New[string, int](tt.capacity)
			assert.Equal(t, tt.want, c.Capacity())
		})
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string, int](3)

	v, ok := c.Get("missing")
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string, int](3)

	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.New[string, int](3)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Promote a; b becomes the least recently used entry.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("d", 4)

	assert.False(t, c.Has("b"))
	assert.True(t, c.Has("a"))
	assert.True(t, c.Has("c"))
	assert.True(t, c.Has("d"))
	assert.Equal(t, 3, c.Len())
}

func TestCache_OverwriteNeverEvicts(t *testing.T) {
	c := cache.New[string, int](2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Has("b"))

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestCache_OverwritePromotes(t *testing.T) {
	c := cache.New[string, int](2)

	c.Set("a", 1)
	c.Set("b", 2)
	// Overwriting a moves it to most recently used, so b is evicted next.
	c.Set("a", 10)
	c.Set("c", 3)

	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("b"))
	assert.True(t, c.Has("c"))
}

func TestCache_PeekDoesNotPromote(t *testing.T) {
	c := cache.New[string, int](2)

	c.Set("a", 1)
	c.Set("b", 2)

	// Peek must not rescue a from eviction.
	v, ok := c.Peek("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("c", 3)
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string, int](2)

	c.Set("a", 1)
	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))
	assert.False(t, c.Has("a"))
	assert.Equal(t, 0, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := cache.New[string, int](3)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Has("a"))

	// Cache remains usable after Clear.
	c.Set("c", 3)
	assert.True(t, c.Has("c"))
}

func TestCache_CapacityOne(t *testing.T) {
	c := cache.New[string, int](0) // clamps to 1

	c.Set("a", 1)
	c.Set("b", 2)

	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))
	assert.Equal(t, 1, c.Len())
}
