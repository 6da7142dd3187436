package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dogwalk-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCachedStore_MissLoadsAndCaches(t *testing.T) {
	mr, client := newMiniredis(t)
	backing := &fakeStore{walkers: samplePool()}
	store := NewCachedStore(backing, client, 5*time.Minute, logger.NewTestLogger(t))

	got, err := store.ListWalkers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, samplePool(), got)
	assert.Equal(t, 1, backing.walkerCalls)

	assert.True(t, mr.Exists(walkerPoolKey))
	assert.Equal(t, 5*time.Minute, mr.TTL(walkerPoolKey))
}

func TestCachedStore_HitSkipsStore(t *testing.T) {
	_, client := newMiniredis(t)
	backing := &fakeStore{walkers: samplePool()}
	store := NewCachedStore(backing, client, time.Minute, logger.NewTestLogger(t))

	_, err := store.ListWalkers(context.Background())
	require.NoError(t, err)
	got, err := store.ListWalkers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, backing.walkerCalls)

	// nil preference sets come back from the cache as empty sets
	want, err := json.Marshal(samplePool())
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(gotJSON))
}

func TestCachedStore_ExpiredEntryReloads(t *testing.T) {
	mr, client := newMiniredis(t)
	backing := &fakeStore{walkers: samplePool()}
	store := NewCachedStore(backing, client, time.Minute, logger.NewTestLogger(t))

	_, err := store.ListWalkers(context.Background())
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = store.ListWalkers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, backing.walkerCalls)
}

func TestCachedStore_CorruptEntryIsReplaced(t *testing.T) {
	mr, client := newMiniredis(t)
	require.NoError(t, mr.Set(walkerPoolKey, "{broken"))
	backing := &fakeStore{walkers: samplePool()}
	store := NewCachedStore(backing, client, time.Minute, logger.NewTestLogger(t))

	got, err := store.ListWalkers(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	cached, err := mr.Get(walkerPoolKey)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(cached)))
}

func TestCachedStore_StoreErrorNotCached(t *testing.T) {
	mr, client := newMiniredis(t)
	backing := &fakeStore{err: errors.New("db down")}
	store := NewCachedStore(backing, client, time.Minute, logger.NewTestLogger(t))

	_, err := store.ListWalkers(context.Background())

	require.Error(t, err)
	assert.False(t, mr.Exists(walkerPoolKey))
}

func TestCachedStore_Invalidate(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewCachedStore(&fakeStore{walkers: samplePool()}, client, time.Minute, logger.NewTestLogger(t))

	_, err := store.ListWalkers(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.InvalidateWalkers(context.Background()))

	assert.False(t, mr.Exists(walkerPoolKey))
}

func TestCachedStore_RedisDownFallsBack(t *testing.T) {
	client, mock := redismock.NewClientMock()
	pool := samplePool()
	data, err := json.Marshal(pool)
	require.NoError(t, err)

	mock.ExpectGet(walkerPoolKey).SetErr(errors.New("connection refused"))
	mock.ExpectSet(walkerPoolKey, data, time.Minute).SetErr(errors.New("connection refused"))

	backing := &fakeStore{walkers: pool}
	store := NewCachedStore(backing, client, time.Minute, logger.NewTestLogger(t))

	got, err := store.ListWalkers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, pool, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
