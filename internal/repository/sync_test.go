package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"dogwalk-workers/internal/common/logger"
	"dogwalk-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexingElasticsearch accepts document writes and answers searches with
// located and nearby hits.
func indexingElasticsearch(t *testing.T, located, nearby []string) (*WalkerSearch, *[]recordedRequest) {
	client, seen := routedElasticsearch(t, func(rec recordedRequest) (int, string) {
		switch {
		case rec.Method == http.MethodPut:
			return http.StatusCreated, `{"result":"created"}`
		case isGeoQuery(rec):
			return http.StatusOK, hitsBody(nearby...)
		default:
			return http.StatusOK, hitsBody(located...)
		}
	})
	return NewWalkerSearch(client, "", logger.NewTestLogger(t)), seen
}

func TestIndexSync_RunReadsPastCache(t *testing.T) {
	mr, client := newMiniredis(t)
	stale, err := json.Marshal(samplePool()[:1])
	require.NoError(t, err)
	require.NoError(t, mr.Set(walkerPoolKey, string(stale)))

	backing := &fakeStore{walkers: samplePool()}
	store := NewCachedStore(backing, client, time.Minute, logger.NewTestLogger(t))
	search, seen := indexingElasticsearch(t, nil, nil)
	sync := NewIndexSync(store, search, logger.NewTestLogger(t))

	n, err := sync.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 1, backing.walkerCalls)
	require.Len(t, *seen, 2)
	assert.Equal(t, "/walkers/_doc/w1", (*seen)[0].Path)
	assert.Equal(t, "/walkers/_doc/w2", (*seen)[1].Path)
	assert.True(t, sync.Ready())
}

func TestIndexSync_RunErrors(t *testing.T) {
	tests := []struct {
		name    string
		store   *fakeStore
		status  int
		wantN   int
		wantErr string
	}{
		{
			name:    "store failure",
			store:   &fakeStore{err: errors.New("connection refused")},
			status:  http.StatusCreated,
			wantErr: "connection refused",
		},
		{
			name:    "index rejects documents",
			store:   &fakeStore{walkers: samplePool()},
			status:  http.StatusInternalServerError,
			wantErr: "500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := fakeElasticsearch(t, tt.status, `{"result":"created"}`)
			sync := NewIndexSync(tt.store, NewWalkerSearch(client, "", logger.NewTestLogger(t)), logger.NewTestLogger(t))

			n, err := sync.Run(context.Background())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantN, n)
			assert.False(t, sync.Ready())
		})
	}
}

func TestIndexSync_NarrowWaitsForFirstSync(t *testing.T) {
	request := models.WalkRequest{
		ID:       "req-1",
		Location: &models.Coordinate{Latitude: 35.0, Longitude: -80.0},
	}
	pool := samplePool()
	search, seen := indexingElasticsearch(t, []string{"w1"}, nil)
	sync := NewIndexSync(&fakeStore{walkers: pool}, search, logger.NewTestLogger(t))

	assert.Equal(t, pool, sync.Narrow(context.Background(), pool, request, 10))
	assert.Empty(t, *seen)

	_, err := sync.Run(context.Background())
	require.NoError(t, err)

	got := sync.Narrow(context.Background(), pool, request, 10)
	assert.Equal(t, []string{"w2"}, walkerIDs(got))
}

func TestIndexSync_StartRepeatsUntilCancelled(t *testing.T) {
	backing := &fakeStore{walkers: samplePool()}
	search, _ := indexingElasticsearch(t, nil, nil)
	sync := NewIndexSync(backing, search, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sync.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, sync.Ready, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
