package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("assess", []byte(`{"age":60}`))
	b := Key("assess", []byte(`{"age":61}`))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Key("assess", []byte(`{"age":60}`)))
	assert.Contains(t, a, "smartcvd:assess:")
	assert.NotEqual(t, a, Key("export", []byte(`{"age":60}`)))
}

func TestTTLCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes("k", []byte("v"), time.Minute))
	b, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	_, ok, _ = c.GetBytes("missing")
	assert.False(t, ok)

	require.NoError(t, c.SetBytes("short", []byte("x"), time.Second))
	require.NoError(t, c.SetBytes("forever", []byte("y"), 0))
	now = now.Add(2 * time.Second)
	_, ok, _ = c.GetBytes("short")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes("forever")
	assert.True(t, ok)

	now = now.Add(time.Hour)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
}

func TestTTLCacheBounded(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCacheSize(2)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes("a", []byte("1"), time.Minute))
	require.NoError(t, c.SetBytes("b", []byte("2"), time.Hour))
	require.NoError(t, c.SetBytes("c", []byte("3"), time.Hour))
	assert.Equal(t, 2, c.Len())

	// "a" expires first, so it is the one evicted
	_, ok, _ := c.GetBytes("a")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes("c")
	assert.True(t, ok)

	// overwriting an existing key does not evict
	require.NoError(t, c.SetBytes("b", []byte("22"), time.Hour))
	assert.Equal(t, 2, c.Len())
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(RedisConfig{Addr: mr.Addr()})
	defer c.Close()

	require.NoError(t, c.Ping(context.Background()))

	_, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetBytes("k", []byte(`{"id":"r1"}`), time.Minute))
	b, ok, err := c.GetBytes("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"r1"}`, string(b))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.GetBytes("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(RedisConfig{Addr: mr.Addr()})
	defer c.Close()
	mr.Close()

	_, _, err := c.GetBytes("k")
	assert.Error(t, err)
}
