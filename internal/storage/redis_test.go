package storage

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jotjot/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	testLogger := logrus.New()
	testLogger.SetOutput(io.Discard)

	store, err := NewRedisStore("redis://"+mr.Addr(), testLogger)
	require.NoError(t, err, "Failed to create test Redis store")
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisStore_CreateAndGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	content := "<p>Hello <b>world</b></p>"
	require.NoError(t, store.Create(ctx, "Ab3x9KT2cQ", content, domain.ShareTTL))

	got, err := store.Get(ctx, "Ab3x9KT2cQ")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	raw, err := mr.Get("jot:Ab3x9KT2cQ")
	require.NoError(t, err)
	assert.Equal(t, content, raw, "value is the raw HTML string")
	assert.Equal(t, 2592000*time.Second, mr.TTL("jot:Ab3x9KT2cQ"))
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), "doesNotExist")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_CreateConflict(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "dup", "first", domain.ShareTTL))
	assert.ErrorIs(t, store.Create(ctx, "dup", "second", domain.ShareTTL), domain.ErrConflict)

	got, err := store.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "old", "content", domain.ShareTTL))

	mr.FastForward(domain.ShareTTL + time.Second)

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_ReadFailure(t *testing.T) {
	store, mr := setupTestRedis(t)

	mr.Close()

	_, err := store.Get(context.Background(), "any")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound, "connection failures are not misses")
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore("://nope", logrus.New())
	assert.Error(t, err)
}
