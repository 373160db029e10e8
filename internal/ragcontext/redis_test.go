package ragcontext

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedisStore(t *testing.T, key string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return newRedisStore(client, key), mr
}

func TestRedisStoreMissingKeyReadsEmpty(t *testing.T) {
	s, mr := newMiniRedisStore(t, "")
	ctx := context.Background()

	text, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", text)

	has, err := s.Has(ctx)
	require.NoError(t, err)
	assert.False(t, has)
	assert.False(t, mr.Exists("rag:context"))
}

func TestRedisStoreSetReplaces(t *testing.T) {
	s, mr := newMiniRedisStore(t, "translator:ctx")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "first"))
	require.NoError(t, s.Set(ctx, "second"))

	text, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", text)

	has, err := s.Has(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	stored, err := mr.Get("translator:ctx")
	require.NoError(t, err)
	assert.Equal(t, "second", stored)
	assert.Zero(t, mr.TTL("translator:ctx"), "context must not expire")
}

func TestRedisStoreSetEmptyClears(t *testing.T) {
	s, _ := newMiniRedisStore(t, "")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "Paris is the capital of France."))
	require.NoError(t, s.Set(ctx, ""))

	text, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", text)

	has, err := s.Has(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRedisStoreSharedBetweenClients(t *testing.T) {
	writer, mr := newMiniRedisStore(t, "")
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	reader := newRedisStore(client, "")
	ctx := context.Background()

	require.NoError(t, writer.Set(ctx, "shared"))
	text, err := reader.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shared", text)
}

func TestRedisStoreErrors(t *testing.T) {
	s, mr := newMiniRedisStore(t, "")
	ctx := context.Background()
	mr.Close()

	_, err := s.Get(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get context")

	err = s.Set(ctx, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set context")

	_, err = s.Has(ctx)
	assert.Error(t, err)
}

func TestNewRedisStoreConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(mr.Addr(), "", "")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "rag:context", s.key)
}
