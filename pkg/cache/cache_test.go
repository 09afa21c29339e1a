package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/furnivision/pkg/cache"
)

func TestMemoryFallbackRoundTrip(t *testing.T) {
	require.Nil(t, cache.RDB)
	assert.Equal(t, "memory", cache.Driver())

	require.NoError(t, cache.Set("cart:u1", []string{"p1", "p2"}, time.Minute))

	var got []string
	assert.True(t, cache.Get("cart:u1", &got))
	assert.Equal(t, []string{"p1", "p2"}, got)

	require.NoError(t, cache.Forget("cart:u1"))
	assert.False(t, cache.Get("cart:u1", &got))
}

func TestMemoryFallbackExpires(t *testing.T) {
	require.NoError(t, cache.Set("short", "v", 10*time.Millisecond))
	require.NoError(t, cache.Set("forever", "v", 0))

	time.Sleep(25 * time.Millisecond)

	var s string
	assert.False(t, cache.Get("short", &s))
	assert.True(t, cache.Get("forever", &s))
	assert.Equal(t, "v", s)

	require.NoError(t, cache.Set("short2", "v", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 1, cache.Sweep())
}

func TestGetWrongShapeIsMiss(t *testing.T) {
	require.NoError(t, cache.Set("shape", "text", time.Minute))
	var n int
	assert.False(t, cache.Get("shape", &n))
}
