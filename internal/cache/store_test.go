package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, DefaultKeyPrefix), mr
}

// ---------------------------------------------------------------------------
// RedisStore
// ---------------------------------------------------------------------------

func TestRedisStore_SetGet(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart:u1", []byte(`{"id":"c1"}`), 30*time.Second))

	raw, err := mr.Get("storefront:cart:u1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"c1"}`, raw)
	assert.Equal(t, 30*time.Second, mr.TTL("storefront:cart:u1"))

	got, ok, err := store.Get(ctx, "cart:u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"id":"c1"}`), got)
}

func TestRedisStore_Miss(t *testing.T) {
	store, _ := setupRedisStore(t)

	got, ok, err := store.Get(context.Background(), "cart:nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "products", []byte(`[]`), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, "products")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart:u1", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "orders:u1", []byte("2"), time.Minute))
	require.NoError(t, store.Set(ctx, "users", []byte("3"), time.Minute))

	require.NoError(t, store.Delete(ctx, "cart:u1", "orders:u1", "never-set"))
	assert.False(t, mr.Exists("storefront:cart:u1"))
	assert.False(t, mr.Exists("storefront:orders:u1"))
	assert.True(t, mr.Exists("storefront:users"))

	assert.NoError(t, store.Delete(ctx))
}

func TestRedisStore_ErrorsWhenServerDown(t *testing.T) {
	store, mr := setupRedisStore(t)
	mr.Close()

	_, _, err := store.Get(context.Background(), "cart:u1")
	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}

// ---------------------------------------------------------------------------
// MemoryStore
// ---------------------------------------------------------------------------

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("v1")
	require.NoError(t, store.Set(ctx, "k", value, time.Minute))
	value[0] = 'x'

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), got, "store keeps its own copy")

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, store.Set(ctx, "forever", []byte("b"), 0))

	now = now.Add(2 * time.Second)

	_, ok, _ := store.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, k, []byte(k), time.Second))
	}
	require.NoError(t, store.Set(ctx, "d", []byte("d"), time.Hour))

	now = now.Add(time.Minute)
	assert.Equal(t, 3, store.Sweep())
	assert.Equal(t, 1, store.Len())
}
