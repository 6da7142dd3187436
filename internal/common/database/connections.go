// internal/common/database/connections.go
package database

import (
	"context"
	"fmt"
	"time"

	"dogwalk-workers/internal/common/config"
)

// Connections groups the backing stores the matching workers share.
// Elasticsearch is nil when walker search is disabled.
type Connections struct {
	Postgres      *PostgresClient
	Redis         *RedisClient
	Elasticsearch *ElasticsearchClient
}

// Open builds every client and pings each one, closing what was opened if
// any of them fails.
func Open(ctx context.Context, cfg *config.Config) (*Connections, error) {
	pg, err := NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	conns := &Connections{Postgres: pg, Redis: NewRedis(cfg.Database.Redis)}

	if cfg.Matching.SearchEnabled {
		es, err := NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			conns.Close()
			return nil, err
		}
		conns.Elasticsearch = es
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for name, err := range conns.HealthCheck(pingCtx) {
		if err != nil {
			conns.Close()
			return nil, fmt.Errorf("%s unavailable: %w", name, err)
		}
	}

	return conns, nil
}

// HealthCheck pings every configured store.
func (c *Connections) HealthCheck(ctx context.Context) map[string]error {
	results := map[string]error{}
	if c.Postgres != nil {
		results["postgres"] = c.Postgres.Ping(ctx)
	}
	if c.Redis != nil {
		results["redis"] = c.Redis.Ping(ctx)
	}
	if c.Elasticsearch != nil {
		results["elasticsearch"] = c.Elasticsearch.Ping(ctx)
	}
	return results
}

func (c *Connections) Close() {
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
