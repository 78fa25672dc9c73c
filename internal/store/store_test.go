package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookverse/bookverse/pkg/config"
)

// exerciseKV runs the behaviour every backend must share
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "socialPosts", []byte(`[{"id":"p1"}]`)))
	got, err := kv.Get(ctx, "socialPosts")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p1"}]`, string(got))

	require.NoError(t, kv.Set(ctx, "socialPosts", []byte(`[]`)))
	got, err = kv.Get(ctx, "socialPosts")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, kv.Delete(ctx, "socialPosts"))
	_, err = kv.Get(ctx, "socialPosts")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting a missing key is not an error
	assert.NoError(t, kv.Delete(ctx, "socialPosts"))
}

func TestMemoryStore(t *testing.T) {
	kv := NewMemoryStore()
	exerciseKV(t, kv)

	require.NoError(t, kv.Close())
	_, err := kv.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestRedisStore(t *testing.T) {
	server := miniredis.RunT(t)
	kv, err := NewRedisStore("redis://" + server.Addr())
	require.NoError(t, err)
	defer kv.Close()

	exerciseKV(t, kv)

	require.NoError(t, kv.Set(context.Background(), "booksRead", []byte("3")))
	assert.True(t, server.Exists("bookverse:booksRead"), "keys should be namespaced")
	assert.NoError(t, kv.Health(context.Background()))
}

func TestRedisStoreConnectError(t *testing.T) {
	_, err := NewRedisStore("not a url")
	assert.Error(t, err)
}

func TestBadgerStore(t *testing.T) {
	kv, err := NewInMemoryBadgerStore()
	require.NoError(t, err)
	defer kv.Close()

	exerciseKV(t, kv)
}

func TestBadgerStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	kv, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "trendingBooks", []byte(`{"books":[]}`)))
	require.NoError(t, kv.Close())

	reopened, err := NewBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "trendingBooks")
	require.NoError(t, err)
	assert.Equal(t, `{"books":[]}`, string(got))
}

func TestOpen(t *testing.T) {
	kv, err := Open(&config.StorageConfig{Backend: config.BackendMemory}, "INFO")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, kv)

	server := miniredis.RunT(t)
	kv, err = Open(&config.StorageConfig{Backend: config.BackendRedis, RedisURL: "redis://" + server.Addr()}, "INFO")
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, kv)
	require.NoError(t, kv.Close())

	_, err = Open(&config.StorageConfig{Backend: "floppy"}, "INFO")
	assert.Error(t, err)
}

func TestEntryTableName(t *testing.T) {
	assert.Equal(t, "client_kv", Entry{}.TableName())
}
