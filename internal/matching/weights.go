// internal/matching/weights.go
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "dogwalk-workers/internal/common/errors"
)

// Factor names one component of the compatibility score.
type Factor string

const (
	FactorSize                 Factor = "size"
	FactorTemperament          Factor = "temperament"
	FactorEnergy               Factor = "energy"
	FactorSpecialNeeds         Factor = "special_needs"
	FactorExperience           Factor = "experience"
	FactorDistanceAvailability Factor = "distance_availability"
	FactorPrice                Factor = "price"
)

// Factors lists every recognised factor in breakdown order.
var Factors = []Factor{
	FactorSize,
	FactorTemperament,
	FactorEnergy,
	FactorSpecialNeeds,
	FactorExperience,
	FactorDistanceAvailability,
	FactorPrice,
}

func (f Factor) Valid() bool {
	for _, known := range Factors {
		if f == known {
			return true
		}
	}
	return false
}

// Weights is a weight table keyed by factor. Tables may be partial; missing
// factors take their baseline weight on Normalize.
type Weights map[Factor]float64

// DefaultWeights returns the baseline weight table. It already sums to 1.
func DefaultWeights() Weights {
	return Weights{
		FactorSize:                 0.20,
		FactorTemperament:          0.15,
		FactorEnergy:               0.10,
		FactorSpecialNeeds:         0.15,
		FactorExperience:           0.10,
		FactorDistanceAvailability: 0.20,
		FactorPrice:                0.10,
	}
}

// Normalize fills missing factors from the baseline and rescales the table
// so it sums to 1. Negative, non-finite, unknown or all-zero tables are rejected.
func (w Weights) Normalize() (Weights, error) {
	merged := DefaultWeights()
	for f, v := range w {
		if !f.Valid() {
			return nil, apperrors.NewInvalidWeightsError(fmt.Sprintf("unknown factor %q", f))
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, apperrors.NewInvalidWeightsError(fmt.Sprintf("weight for %s must be a non-negative number, got %v", f, v))
		}
		merged[f] = v
	}

	total := 0.0
	for _, f := range Factors {
		total += merged[f]
	}
	if total <= 0 {
		return nil, apperrors.NewInvalidWeightsError("weights sum to zero")
	}

	out := make(Weights, len(Factors))
	for _, f := range Factors {
		out[f] = merged[f] / total
	}
	return out, nil
}

// ParseWeights converts a loosely keyed table (config or job variables) into
// Weights. Keys are case-insensitive. The result is not normalized.
func ParseWeights(raw map[string]float64) (Weights, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := make(Weights, len(raw))
	for _, k := range keys {
		f := Factor(strings.ToLower(strings.TrimSpace(k)))
		if !f.Valid() {
			return nil, apperrors.NewInvalidWeightsError(fmt.Sprintf("unknown factor %q", k))
		}
		w[f] = raw[k]
	}
	return w, nil
}
