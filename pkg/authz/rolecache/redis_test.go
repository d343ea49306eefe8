package rolecache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/aegis/pkg/utils/errors"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, _ := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alice", []string{"admin", "viewer"}, time.Hour))

	roles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"admin", "viewer"}, roles)
}

func TestRedisCacheMissingIsEmptyNotError(t *testing.T) {
	cache, _ := setupRedisCache(t)

	roles, err := cache.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRedisCacheSetReplacesPreviousSet(t *testing.T) {
	cache, _ := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alice", []string{"admin", "viewer"}, time.Hour))
	require.NoError(t, cache.Set(ctx, "alice", []string{"editor"}, time.Hour))

	roles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, roles)
}

func TestRedisCacheTTL(t *testing.T) {
	cache, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alice", []string{"admin"}, time.Minute))

	mr.FastForward(2 * time.Minute)

	roles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRedisCacheInvalidate(t *testing.T) {
	cache, _ := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alice", []string{"admin"}, time.Hour))
	require.NoError(t, cache.Invalidate(ctx, "alice"))

	roles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRedisCacheUnreachableIsError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewRedisCache(client)

	mr.Close()

	_, err := cache.Get(context.Background(), "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCache)
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewRedisCache(client, "custom:")

	require.NoError(t, cache.Set(context.Background(), "alice", []string{"admin"}, 0))
	assert.True(t, mr.Exists("custom:alice"))
}
