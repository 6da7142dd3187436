// internal/repository/sync.go
package repository

import (
	"context"
	"sync/atomic"
	"time"

	"dogwalk-workers/internal/common/logger"
	"dogwalk-workers/internal/models"
)

type poolInvalidator interface {
	InvalidateWalkers(ctx context.Context) error
}

// IndexSync copies the walker pool from the store into the search index and
// gates narrowing on the index having been fully built once.
type IndexSync struct {
	store  Store
	search *WalkerSearch
	logger logger.Logger
	ready  atomic.Bool
}

func NewIndexSync(store Store, search *WalkerSearch, log logger.Logger) *IndexSync {
	return &IndexSync{
		store:  store,
		search: search,
		logger: log.WithFields(map[string]interface{}{"component": "walker-index-sync"}),
	}
}

// Ready reports whether a sync has indexed the whole pool.
func (s *IndexSync) Ready() bool {
	return s.ready.Load()
}

// Run reads the pool past any cache and indexes every walker. It returns the
// number indexed and the first indexing error; a run with errors leaves the
// ready state as it was.
func (s *IndexSync) Run(ctx context.Context) (int, error) {
	if inv, ok := s.store.(poolInvalidator); ok {
		if err := inv.InvalidateWalkers(ctx); err != nil {
			s.logger.Warn("walker pool cache invalidation failed", map[string]interface{}{"error": err})
		}
	}

	walkers, err := s.store.ListWalkers(ctx)
	if err != nil {
		return 0, err
	}

	var firstErr error
	indexed := 0
	for _, w := range walkers {
		if err := s.search.IndexWalker(ctx, w); err != nil {
			s.logger.Warn("walker not indexed", map[string]interface{}{"walkerId": w.ID, "error": err})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		indexed++
	}

	s.logger.Info("walker index synced", map[string]interface{}{"indexed": indexed, "total": len(walkers)})
	if firstErr != nil {
		return indexed, firstErr
	}
	s.ready.Store(true)
	return indexed, nil
}

// Start re-runs the sync every interval until ctx is done.
func (s *IndexSync) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("walker index sync failed", map[string]interface{}{"error": err})
			}
		}
	}
}

// Narrow hands the pool to the search index once it is ready and returns it
// unchanged before that.
func (s *IndexSync) Narrow(ctx context.Context, pool []models.WalkerProfile, request models.WalkRequest, radiusKm float64) []models.WalkerProfile {
	if !s.Ready() {
		return pool
	}
	return s.search.Narrow(ctx, pool, request, radiusKm)
}
