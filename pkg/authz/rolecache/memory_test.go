package rolecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alice", []string{"admin", "viewer"}, 0))

	roles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"admin", "viewer"}, roles)
}

func TestMemoryCacheMissingIsEmptyNotError(t *testing.T) {
	cache := NewMemoryCache()

	roles, err := cache.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alice", []string{"admin"}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	roles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestMemoryCacheInvalidate(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alice", []string{"admin"}, 0))
	require.NoError(t, cache.Invalidate(ctx, "alice"))

	roles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestMemoryCacheSetCopiesInput(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	roles := []string{"admin"}
	require.NoError(t, cache.Set(ctx, "alice", roles, 0))
	roles[0] = "mutated"

	got, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, got)
}
