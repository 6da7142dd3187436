// internal/workers/matching/assign-walker/config.go
package assignwalker

import (
	"time"

	"dogwalk-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// VerifyWalker rejects walker ids missing from the active pool.
	VerifyWalker bool
}

func ConfigFromApp(cfg *config.Config) *Config {
	c := &Config{
		Timeout:      config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		VerifyWalker: true,
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}
