// internal/repository/cache.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dogwalk-workers/internal/common/logger"
	"dogwalk-workers/internal/common/metrics"
	"dogwalk-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const walkerPoolKey = "walkers:pool"

// CachedStore caches the walker pool in redis. Everything else goes
// straight to the wrapped Store.
type CachedStore struct {
	Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(store Store, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		Store:  store,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "walker-pool-cache"}),
	}
}

// ListWalkers serves the pool from redis when possible. Cache failures are
// logged and fall through to the backing store.
func (s *CachedStore) ListWalkers(ctx context.Context) ([]models.WalkerProfile, error) {
	val, err := s.redis.Get(ctx, walkerPoolKey).Bytes()
	switch {
	case err == nil:
		var walkers []models.WalkerProfile
		if err := json.Unmarshal(val, &walkers); err == nil {
			metrics.WalkerPoolCache.WithLabelValues("hit").Inc()
			return walkers, nil
		}
		metrics.WalkerPoolCache.WithLabelValues("error").Inc()
		s.logger.Warn("discarding undecodable walker pool cache entry", map[string]interface{}{
			"key": walkerPoolKey,
		})
	case errors.Is(err, redis.Nil):
		metrics.WalkerPoolCache.WithLabelValues("miss").Inc()
	default:
		metrics.WalkerPoolCache.WithLabelValues("error").Inc()
		s.logger.Warn("walker pool cache read failed", map[string]interface{}{
			"key":   walkerPoolKey,
			"error": err,
		})
	}

	walkers, err := s.Store.ListWalkers(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(walkers)
	if err != nil {
		return walkers, nil
	}
	if err := s.redis.Set(ctx, walkerPoolKey, data, s.ttl).Err(); err != nil {
		s.logger.Warn("walker pool cache write failed", map[string]interface{}{
			"key":   walkerPoolKey,
			"error": err,
		})
	}
	return walkers, nil
}

// InvalidateWalkers drops the cached pool so the next read hits the store.
func (s *CachedStore) InvalidateWalkers(ctx context.Context) error {
	return s.redis.Del(ctx, walkerPoolKey).Err()
}
