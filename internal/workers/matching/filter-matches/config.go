// internal/workers/matching/filter-matches/config.go
package filtermatches

import (
	"time"

	"dogwalk-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func ConfigFromApp(cfg *config.Config) *Config {
	c := &Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout)}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return c
}
