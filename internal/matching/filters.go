// internal/matching/filters.go
package matching

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/models"
)

// Filter holds the post-ranking predicates. Predicates are ANDed; zero values
// and empty allow-lists impose no restriction.
type Filter struct {
	MinScore         float64                            `json:"minScore,omitempty"`
	MaxDistanceKm    float64                            `json:"maxDistanceKm,omitempty"`
	MaxHourlyRate    float64                            `json:"maxHourlyRate,omitempty"`
	DogSizes         models.Set[models.DogSize]         `json:"dogSizes,omitempty"`
	ExperienceLevels models.Set[models.ExperienceLevel] `json:"experienceLevels,omitempty"`
}

func (f Filter) IsZero() bool {
	return f.MinScore == 0 && f.MaxDistanceKm == 0 && f.MaxHourlyRate == 0 &&
		f.DogSizes.Empty() && f.ExperienceLevels.Empty()
}

// Matches reports whether r passes every predicate. A distance ceiling
// rejects results whose distance is unknown.
func (f Filter) Matches(r MatchResult) bool {
	if r.Score < f.MinScore {
		return false
	}
	if f.MaxDistanceKm > 0 && (r.DistanceKm == nil || *r.DistanceKm > f.MaxDistanceKm) {
		return false
	}
	if f.MaxHourlyRate > 0 && r.Walker.HourlyRate > f.MaxHourlyRate {
		return false
	}
	if !f.DogSizes.Empty() && !r.Walker.PreferredSizes.Empty() && !r.Walker.PreferredSizes.Intersects(f.DogSizes) {
		return false
	}
	if !f.ExperienceLevels.Accepts(r.Walker.Experience) {
		return false
	}
	return true
}

// Apply returns the results that pass the filter, preserving order.
func (f Filter) Apply(results []MatchResult) []MatchResult {
	out := make([]MatchResult, 0, len(results))
	for _, r := range results {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// ParseFilter builds a Filter from loosely typed job variables. Numbers may
// arrive as JSON numbers or numeric strings; allow-lists as arrays or
// comma-separated strings.
func ParseFilter(raw map[string]interface{}) (Filter, error) {
	var f Filter
	if raw == nil {
		return f, nil
	}

	var err error
	if v, ok := raw["minScore"]; ok {
		if f.MinScore, err = parseNumber("minScore", v); err != nil {
			return Filter{}, err
		}
		if f.MinScore > 1 {
			return Filter{}, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("minScore %v must be within [0, 1]", f.MinScore))
		}
	}
	if v, ok := firstPresent(raw, "maxDistanceKm", "maxDistance"); ok {
		if f.MaxDistanceKm, err = parseNumber("maxDistanceKm", v); err != nil {
			return Filter{}, err
		}
	}
	if v, ok := firstPresent(raw, "maxHourlyRate", "maxPrice"); ok {
		if f.MaxHourlyRate, err = parseNumber("maxHourlyRate", v); err != nil {
			return Filter{}, err
		}
	}
	if v, ok := raw["dogSizes"]; ok {
		sizes := models.NewSet[models.DogSize]()
		for _, s := range parseStringArray(v) {
			size := models.DogSize(strings.ToLower(s))
			if !size.Valid() {
				return Filter{}, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("invalid dog size '%s'", s))
			}
			sizes[size] = struct{}{}
		}
		f.DogSizes = sizes
	}
	if v, ok := raw["experienceLevels"]; ok {
		levels := models.NewSet[models.ExperienceLevel]()
		for _, s := range parseStringArray(v) {
			level := models.ExperienceLevel(strings.ToLower(s))
			if !level.Valid() {
				return Filter{}, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("invalid experience level '%s'", s))
			}
			levels[level] = struct{}{}
		}
		f.ExperienceLevels = levels
	}

	return f, nil
}

func firstPresent(raw map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func parseNumber(field string, raw interface{}) (float64, error) {
	var n float64
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("%s: %v", field, err))
		}
		n = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("%s: '%s' is not a number", field, v))
		}
		n = parsed
	default:
		return 0, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("%s: unsupported type %T", field, raw))
	}

	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("%s must be a non-negative number, got %v", field, n))
	}
	return n, nil
}

func parseStringArray(raw interface{}) []string {
	result := []string{}
	seen := make(map[string]bool)

	add := func(s string) {
		trimmed := strings.TrimSpace(s)
		if trimmed != "" && !seen[trimmed] {
			result = append(result, trimmed)
			seen[trimmed] = true
		}
	}

	switch v := raw.(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	}
	return result
}
