// internal/matching/factors.go
package matching

import (
	"math"

	"dogwalk-workers/internal/geo"
	"dogwalk-workers/internal/models"
)

const (
	temperamentPartialCredit  = 0.3
	availabilityPartialCredit = 0.5
)

var experienceScores = map[models.ExperienceLevel]float64{
	models.ExperienceBeginner:     0.6,
	models.ExperienceIntermediate: 0.8,
	models.ExperienceExpert:       1.0,
}

func sizeScore(w *models.WalkerProfile, d *models.DogProfile) float64 {
	if w.PreferredSizes.Accepts(d.Size) {
		return 1
	}
	return 0
}

// temperamentScore gives partial credit for a mismatch unless the dog is
// reactive or aggressive, which scores nothing without an explicit opt-in.
func temperamentScore(w *models.WalkerProfile, d *models.DogProfile) float64 {
	if w.PreferredTemperaments.Accepts(d.Temperament) {
		return 1
	}
	if d.Temperament.RequiresOptIn() {
		return 0
	}
	return temperamentPartialCredit
}

// energyScore decays with the ordinal gap to the nearest accepted level:
// adjacent levels score 0.5, opposite ends 0.
func energyScore(w *models.WalkerProfile, d *models.DogProfile) float64 {
	if w.AcceptedEnergyLevels.Accepts(d.EnergyLevel) {
		return 1
	}
	dog := d.EnergyLevel.Ordinal()
	gap := 2
	for level := range w.AcceptedEnergyLevels {
		if g := abs(level.Ordinal() - dog); g < gap {
			gap = g
		}
	}
	return 1 - float64(gap)/2
}

func specialNeedsScore(w *models.WalkerProfile, d *models.DogProfile) float64 {
	for _, need := range d.Needs() {
		if !w.SupportedNeeds.Contains(need) {
			return 0
		}
	}
	return 1
}

func experienceScore(w *models.WalkerProfile) float64 {
	return experienceScores[w.Experience]
}

// distanceAvailabilityScore returns the logistics sub-score and, when both
// locations are known, the walker-to-walk distance.
func distanceAvailabilityScore(w *models.WalkerProfile, r *models.WalkRequest) (float64, *float64) {
	km, ok := geo.DistanceBetween(w.Location, r.Location)
	if !ok {
		return 0, nil
	}

	inRange := w.MaxDistanceKm <= 0 || km <= w.MaxDistanceKm
	available := isAvailable(w, r)

	switch {
	case inRange && available:
		return 1, &km
	case inRange || available:
		return availabilityPartialCredit, &km
	}
	return 0, &km
}

func isAvailable(w *models.WalkerProfile, r *models.WalkRequest) bool {
	if !w.AvailableDays.Accepts(r.StartTime.Weekday()) {
		return false
	}
	if w.PreferredTimeSlots.Empty() {
		return true
	}
	slot, ok := models.SlotAt(r.StartTime)
	return ok && w.PreferredTimeSlots.Contains(slot)
}

// priceScore decays linearly once the rate exceeds the budget and reaches 0
// at twice the budget. A zero budget means none was stated.
func priceScore(rate, budget float64) float64 {
	if budget <= 0 || rate <= budget {
		return 1
	}
	return math.Max(0, 1-(rate-budget)/budget)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
