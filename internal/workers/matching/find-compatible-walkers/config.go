// internal/workers/matching/find-compatible-walkers/config.go
package findcompatiblewalkers

import (
	"fmt"
	"time"

	"dogwalk-workers/internal/common/config"
	"dogwalk-workers/internal/matching"
)

type Config struct {
	Timeout           time.Duration
	Weights           matching.Weights
	DefaultMaxResults int
	MaxResultsCap     int
	CandidateRadiusKm float64
}

// ConfigFromApp reads the worker timeout and the matching section.
func ConfigFromApp(cfg *config.Config) (*Config, error) {
	weights, err := matching.ParseWeights(cfg.Matching.Weights)
	if err != nil {
		return nil, err
	}

	c := &Config{
		Timeout:           config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		Weights:           weights,
		DefaultMaxResults: cfg.Matching.DefaultMaxResults,
		MaxResultsCap:     cfg.Matching.MaxResultsCap,
		CandidateRadiusKm: cfg.Matching.CandidateRadiusKm,
	}
	return c, c.Validate()
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.DefaultMaxResults < 0 || c.MaxResultsCap < 0 {
		return fmt.Errorf("result limits must not be negative")
	}
	if c.MaxResultsCap > 0 && c.DefaultMaxResults > c.MaxResultsCap {
		return fmt.Errorf("default max results %d exceeds cap %d", c.DefaultMaxResults, c.MaxResultsCap)
	}
	if _, err := c.Weights.Normalize(); err != nil {
		return err
	}
	return nil
}

// resultLimit resolves the caller's requested size against the default and cap.
// Zero means unlimited.
func (c *Config) resultLimit(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = c.DefaultMaxResults
	}
	if c.MaxResultsCap > 0 && (limit <= 0 || limit > c.MaxResultsCap) {
		limit = c.MaxResultsCap
	}
	return limit
}
