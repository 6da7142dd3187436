// Package matching ranks candidate walkers for a walk request.
//
// The engine is pure: it never performs I/O, never mutates its inputs and
// holds no state besides its normalized weight table, so one Engine may be
// shared by concurrent callers.
package matching

import (
	"fmt"
	"math"
	"sort"

	apperrors "dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/models"
)

// Breakdown maps every factor to its sub-score in [0,1].
type Breakdown map[Factor]float64

// MatchResult is one walker scored against one dog and request.
type MatchResult struct {
	Walker     models.WalkerProfile `json:"walker"`
	DogID      string               `json:"dogId"`
	Score      float64              `json:"score"`
	Breakdown  Breakdown            `json:"breakdown"`
	DistanceKm *float64             `json:"distanceKm,omitempty"`
}

type Engine struct {
	weights Weights
}

// NewEngine normalizes weights once up front. A nil table uses DefaultWeights.
func NewEngine(weights Weights) (*Engine, error) {
	normalized, err := weights.Normalize()
	if err != nil {
		return nil, err
	}
	return &Engine{weights: normalized}, nil
}

// Weights returns a copy of the normalized weight table.
func (e *Engine) Weights() Weights {
	out := make(Weights, len(e.weights))
	for f, v := range e.weights {
		out[f] = v
	}
	return out
}

// FindCompatibleMatches scores every candidate against the dog and request and
// returns them most compatible first, at most maxResults long (no cap when
// maxResults <= 0).
//
// Request status is not checked here. Walkers sharing an ID are collapsed to
// the higher-scoring entry, and a walker whose ID equals ownerID is skipped.
func (e *Engine) FindCompatibleMatches(
	candidates []models.WalkerProfile,
	request models.WalkRequest,
	ownerID string,
	dog models.DogProfile,
	maxResults int,
) ([]MatchResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if err := dog.Validate(); err != nil {
		return nil, err
	}
	if ownerID != "" && dog.OwnerID != "" && dog.OwnerID != ownerID {
		return nil, apperrors.NewInvalidInputError("dog",
			fmt.Sprintf("dog %s belongs to owner %s, not %s", dog.ID, dog.OwnerID, ownerID))
	}
	for i := range candidates {
		if err := candidates[i].Validate(); err != nil {
			return nil, err
		}
	}

	results := make([]MatchResult, 0, len(candidates))
	for i := range candidates {
		if ownerID != "" && candidates[i].ID == ownerID {
			continue
		}
		results = append(results, e.score(&candidates[i], &request, &dog))
	}

	results = dedupe(results)
	rank(results)

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// Score computes a single result without validation or ranking.
func (e *Engine) Score(walker models.WalkerProfile, request models.WalkRequest, dog models.DogProfile) MatchResult {
	return e.score(&walker, &request, &dog)
}

func (e *Engine) score(w *models.WalkerProfile, r *models.WalkRequest, d *models.DogProfile) MatchResult {
	logistics, km := distanceAvailabilityScore(w, r)

	breakdown := Breakdown{
		FactorSize:                 sizeScore(w, d),
		FactorTemperament:          temperamentScore(w, d),
		FactorEnergy:               energyScore(w, d),
		FactorSpecialNeeds:         specialNeedsScore(w, d),
		FactorExperience:           experienceScore(w),
		FactorDistanceAvailability: logistics,
		FactorPrice:                priceScore(w.HourlyRate, r.Budget),
	}

	total := 0.0
	for _, f := range Factors {
		total += e.weights[f] * breakdown[f]
	}

	return MatchResult{
		Walker:     *w,
		DogID:      d.ID,
		Score:      math.Min(1, math.Max(0, total)),
		Breakdown:  breakdown,
		DistanceKm: km,
	}
}

// dedupe keeps one result per walker ID: the higher score wins, ties keep the
// first seen, and the survivor occupies the first occurrence's position.
func dedupe(results []MatchResult) []MatchResult {
	index := make(map[string]int, len(results))
	out := results[:0]
	for _, r := range results {
		if i, seen := index[r.Walker.ID]; seen {
			if r.Score > out[i].Score {
				out[i] = r
			}
			continue
		}
		index[r.Walker.ID] = len(out)
		out = append(out, r)
	}
	return out
}

// rank sorts by descending score. Equal scores keep input order.
func rank(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
