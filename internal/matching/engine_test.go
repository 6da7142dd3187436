package matching

import (
	"fmt"
	"testing"

	apperrors "dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Scenarios
// ==========================

func TestFindCompatibleMatches_IdealWalker(t *testing.T) {
	e := defaultEngine()

	results, err := e.FindCompatibleMatches(
		[]models.WalkerProfile{expertWalker("w1")}, saturdayRequest(), "owner-1", calmDog(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "w1", r.Walker.ID)
	assert.Equal(t, "dog-1", r.DogID)
	assert.Equal(t, 1.0, r.Breakdown[FactorSize])
	assert.Equal(t, 1.0, r.Breakdown[FactorDistanceAvailability])
	assert.Equal(t, 1.0, r.Breakdown[FactorPrice])
	assert.Equal(t, 1.0, r.Breakdown[FactorExperience])
	assert.GreaterOrEqual(t, r.Score, 0.95)
	require.NotNil(t, r.DistanceKm)
	assert.InDelta(t, 5.0, *r.DistanceKm, 0.01)
}

func TestFindCompatibleMatches_UnpreferredSizeScoresLower(t *testing.T) {
	e := defaultEngine()
	candidates := []models.WalkerProfile{expertWalker("w1")}

	base, err := e.FindCompatibleMatches(candidates, saturdayRequest(), "owner-1", calmDog(), 10)
	require.NoError(t, err)

	small := calmDog()
	small.Size = models.SizeSmall
	got, err := e.FindCompatibleMatches(candidates, saturdayRequest(), "owner-1", small, 10)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Breakdown[FactorSize])
	assert.Less(t, got[0].Score, base[0].Score)
}

func TestFindCompatibleMatches_NoCandidates(t *testing.T) {
	results, err := defaultEngine().FindCompatibleMatches(nil, saturdayRequest(), "owner-1", calmDog(), 5)

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFindCompatibleMatches_OverBudgetStillReturned(t *testing.T) {
	w := expertWalker("w1")
	w.HourlyRate = 50
	req := saturdayRequest()
	req.Budget = 10

	results, err := defaultEngine().FindCompatibleMatches([]models.WalkerProfile{w}, req, "owner-1", calmDog(), 5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, 0.0, results[0].Breakdown[FactorPrice])
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
}

// ==========================
// Properties
// ==========================

func TestFindCompatibleMatches_BreakdownHasEveryFactor(t *testing.T) {
	results, err := defaultEngine().FindCompatibleMatches(
		[]models.WalkerProfile{expertWalker("w1")}, saturdayRequest(), "", calmDog(), 0)
	require.NoError(t, err)

	for _, f := range Factors {
		v, ok := results[0].Breakdown[f]
		assert.True(t, ok, string(f))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestFindCompatibleMatches_ScoreWithinUnitInterval(t *testing.T) {
	tables := []Weights{
		nil,
		{FactorPrice: 10},
		{FactorSize: 1, FactorTemperament: 0, FactorEnergy: 0, FactorSpecialNeeds: 0, FactorExperience: 0, FactorDistanceAvailability: 0, FactorPrice: 0},
		{FactorSize: 3, FactorTemperament: 3, FactorEnergy: 3, FactorSpecialNeeds: 3, FactorExperience: 3, FactorDistanceAvailability: 3, FactorPrice: 3},
		{FactorDistanceAvailability: 0.7, FactorExperience: 0.01},
	}

	for i, table := range tables {
		e, err := NewEngine(table)
		require.NoError(t, err)

		results, err := e.FindCompatibleMatches(mixedPool(), saturdayRequest(), "owner-1", calmDog(), 0)
		require.NoError(t, err)
		for _, r := range results {
			assert.GreaterOrEqual(t, r.Score, 0.0, "table %d walker %s", i, r.Walker.ID)
			assert.LessOrEqual(t, r.Score, 1.0, "table %d walker %s", i, r.Walker.ID)
		}
	}
}

func TestFindCompatibleMatches_Deterministic(t *testing.T) {
	e := defaultEngine()

	first, err := e.FindCompatibleMatches(mixedPool(), saturdayRequest(), "owner-1", calmDog(), 0)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.FindCompatibleMatches(mixedPool(), saturdayRequest(), "owner-1", calmDog(), 0)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFindCompatibleMatches_SortedDescendingStable(t *testing.T) {
	pool := []models.WalkerProfile{expertWalker("a"), expertWalker("b"), expertWalker("c")}
	pool[1].Experience = models.ExperienceBeginner

	results, err := defaultEngine().FindCompatibleMatches(pool, saturdayRequest(), "owner-1", calmDog(), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c", "b"}, walkerIDs(results))
}

func TestFindCompatibleMatches_DeduplicatesWalkers(t *testing.T) {
	weaker := expertWalker("dup")
	weaker.Experience = models.ExperienceBeginner
	stronger := expertWalker("dup")
	other := expertWalker("other")
	other.HourlyRate = 45

	results, err := defaultEngine().FindCompatibleMatches(
		[]models.WalkerProfile{weaker, other, stronger}, saturdayRequest(), "owner-1", calmDog(), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"dup", "other"}, walkerIDs(results))
	assert.Equal(t, models.ExperienceExpert, results[0].Walker.Experience, "higher score wins")
}

func TestFindCompatibleMatches_DuplicateTieKeepsFirstSeen(t *testing.T) {
	first := expertWalker("dup")
	first.FullName = "first"
	second := expertWalker("dup")
	second.FullName = "second"

	results, err := defaultEngine().FindCompatibleMatches(
		[]models.WalkerProfile{first, second}, saturdayRequest(), "owner-1", calmDog(), 0)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "first", results[0].Walker.FullName)
}

func TestFindCompatibleMatches_TruncationIsPrefixOfFullRanking(t *testing.T) {
	e := defaultEngine()
	pool := mixedPool()

	full, err := e.FindCompatibleMatches(pool, saturdayRequest(), "owner-1", calmDog(), len(pool))
	require.NoError(t, err)

	for k := 1; k <= len(full); k++ {
		got, err := e.FindCompatibleMatches(pool, saturdayRequest(), "owner-1", calmDog(), k)
		require.NoError(t, err)
		assert.Equal(t, full[:k], got, "k=%d", k)
	}

	uncapped, err := e.FindCompatibleMatches(pool, saturdayRequest(), "owner-1", calmDog(), 0)
	require.NoError(t, err)
	assert.Equal(t, full, uncapped)
}

func TestFindCompatibleMatches_DoesNotMutateInputs(t *testing.T) {
	pool := mixedPool()
	snapshot := mixedPool()

	_, err := defaultEngine().FindCompatibleMatches(pool, saturdayRequest(), "owner-1", calmDog(), 2)
	require.NoError(t, err)

	assert.Equal(t, snapshot, pool)
}

func TestFindCompatibleMatches_DegenerateLocations(t *testing.T) {
	w := expertWalker("w1")
	w.Location = nil
	req := saturdayRequest()
	req.Location = nil

	results, err := defaultEngine().FindCompatibleMatches([]models.WalkerProfile{w}, req, "owner-1", calmDog(), 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, 0.0, results[0].Breakdown[FactorDistanceAvailability])
	assert.Nil(t, results[0].DistanceKm)
}

func TestFindCompatibleMatches_SkipsOwnerAsWalker(t *testing.T) {
	pool := []models.WalkerProfile{expertWalker("owner-1"), expertWalker("w2")}

	results, err := defaultEngine().FindCompatibleMatches(pool, saturdayRequest(), "owner-1", calmDog(), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"w2"}, walkerIDs(results))
}

func TestFindCompatibleMatches_IgnoresRequestStatus(t *testing.T) {
	req := saturdayRequest()
	req.Status = models.StatusCompleted

	results, err := defaultEngine().FindCompatibleMatches(
		[]models.WalkerProfile{expertWalker("w1")}, req, "owner-1", calmDog(), 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFindCompatibleMatches_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		pool    func() []models.WalkerProfile
		request func() models.WalkRequest
		dog     func() models.DogProfile
	}{
		{
			name: "negative hourly rate",
			pool: func() []models.WalkerProfile {
				w := expertWalker("w1")
				w.HourlyRate = -5
				return []models.WalkerProfile{w}
			},
		},
		{
			name: "walker coordinate out of range",
			pool: func() []models.WalkerProfile {
				w := expertWalker("w1")
				w.Location = &models.Coordinate{Latitude: 95}
				return []models.WalkerProfile{w}
			},
		},
		{
			name: "request coordinate out of range",
			request: func() models.WalkRequest {
				r := saturdayRequest()
				r.Location = &models.Coordinate{Longitude: -190}
				return r
			},
		},
		{
			name: "negative budget",
			request: func() models.WalkRequest {
				r := saturdayRequest()
				r.Budget = -1
				return r
			},
		},
		{
			name: "dog of another owner",
			dog: func() models.DogProfile {
				d := calmDog()
				d.OwnerID = "owner-2"
				return d
			},
		},
		{
			name: "unknown dog size",
			dog: func() models.DogProfile {
				d := calmDog()
				d.Size = "huge"
				return d
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := []models.WalkerProfile{expertWalker("w1")}
			req := saturdayRequest()
			dog := calmDog()
			if tt.pool != nil {
				pool = tt.pool()
			}
			if tt.request != nil {
				req = tt.request()
			}
			if tt.dog != nil {
				dog = tt.dog()
			}

			results, err := defaultEngine().FindCompatibleMatches(pool, req, "owner-1", dog, 0)
			require.Error(t, err)
			assert.Nil(t, results)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
		})
	}
}

func TestNewEngine_RejectsBadWeights(t *testing.T) {
	_, err := NewEngine(Weights{FactorPrice: -1})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidWeights))
}

func TestEngine_WeightsReturnsCopy(t *testing.T) {
	e := defaultEngine()
	w := e.Weights()
	w[FactorSize] = 99

	assert.InDelta(t, 0.20, e.Weights()[FactorSize], 1e-12)
}

func TestEngine_ScoreIsWeightedSum(t *testing.T) {
	e, err := NewEngine(Weights{
		FactorSize: 1, FactorTemperament: 1, FactorEnergy: 0, FactorSpecialNeeds: 0,
		FactorExperience: 0, FactorDistanceAvailability: 0, FactorPrice: 0,
	})
	require.NoError(t, err)

	w := expertWalker("w1")
	w.PreferredTemperaments = models.NewSet(models.TemperamentFriendly)
	r := e.Score(w, saturdayRequest(), calmDog())

	// size 1.0 * 0.5 + temperament 0.3 * 0.5
	assert.InDelta(t, 0.65, r.Score, 1e-9)
}

// ==========================
// Helpers
// ==========================

func mixedPool() []models.WalkerProfile {
	var pool []models.WalkerProfile
	levels := []models.ExperienceLevel{models.ExperienceBeginner, models.ExperienceIntermediate, models.ExperienceExpert}
	for i := 0; i < 9; i++ {
		w := expertWalker(fmt.Sprintf("w%d", i))
		w.Experience = levels[i%3]
		w.HourlyRate = float64(15 + 5*i)
		if i%4 == 0 {
			w.PreferredSizes = models.NewSet(models.SizeSmall)
		}
		if i%5 == 0 {
			w.Location = nil
		}
		pool = append(pool, w)
	}
	return pool
}

func walkerIDs(results []MatchResult) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.Walker.ID)
	}
	return ids
}
