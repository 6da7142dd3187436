// internal/workers/matching/filter-matches/models.go
package filtermatches

import "dogwalk-workers/internal/matching"

type Input struct {
	Matches    []matching.MatchResult `json:"matches"`
	RawFilters map[string]interface{} `json:"rawFilters,omitempty"`
}

type Output struct {
	Matches      []matching.MatchResult `json:"matches"`
	RemovedCount int                    `json:"removedCount"`
}
