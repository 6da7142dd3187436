// internal/workers/matching/find-compatible-walkers/models.go
package findcompatiblewalkers

import (
	"dogwalk-workers/internal/matching"
	"dogwalk-workers/internal/models"
)

// Input names the owner and either a stored request (requestId) or a
// complete inline request. dogId narrows matching to one dog.
type Input struct {
	OwnerID    string                 `json:"ownerId"`
	DogID      string                 `json:"dogId,omitempty"`
	RequestID  string                 `json:"requestId,omitempty"`
	Request    *models.WalkRequest    `json:"request,omitempty"`
	MaxResults int                    `json:"maxResults,omitempty"`
	Weights    map[string]float64     `json:"weights,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	MatchRunID     string                 `json:"matchRunId"`
	Matches        []matching.MatchResult `json:"matches"`
	CandidateCount int                    `json:"candidateCount"`
	DogCount       int                    `json:"dogCount"`
}
