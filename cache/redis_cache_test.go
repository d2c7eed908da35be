package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, closeFn, err := NewRedisCache(zap.NewNop(), &RedisCacheConfig{Addr: mr.Addr(), ConnectTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return cache, mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
	value, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	require.NoError(t, cache.Delete(ctx, "k"))
	assert.ErrorIs(t, cache.Delete(ctx, "k"), ErrKeyNotFound)

	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", "v", time.Second))
	mr.FastForward(2 * time.Second)

	_, err := cache.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisCache_Clear(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "1", 0))
	require.NoError(t, cache.Set(ctx, "b", "2", 0))
	require.NoError(t, cache.Clear(ctx))
	assert.Empty(t, mr.Keys())
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, _, err = NewRedisCache(zap.NewNop(), &RedisCacheConfig{Addr: addr, ConnectTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
