// internal/models/dog.go
package models

import (
	"fmt"

	apperrors "dogwalk-workers/internal/common/errors"
)

type DogSize string

const (
	SizeSmall  DogSize = "small"
	SizeMedium DogSize = "medium"
	SizeLarge  DogSize = "large"
)

func (s DogSize) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

type Temperament string

const (
	TemperamentCalm       Temperament = "calm"
	TemperamentFriendly   Temperament = "friendly"
	TemperamentPlayful    Temperament = "playful"
	TemperamentShy        Temperament = "shy"
	TemperamentAnxious    Temperament = "anxious"
	TemperamentReactive   Temperament = "reactive"
	TemperamentAggressive Temperament = "aggressive"
)

func (t Temperament) Valid() bool {
	switch t {
	case TemperamentCalm, TemperamentFriendly, TemperamentPlayful, TemperamentShy,
		TemperamentAnxious, TemperamentReactive, TemperamentAggressive:
		return true
	}
	return false
}

// RequiresOptIn reports whether a walker who does not list this temperament
// should get no partial credit for it.
func (t Temperament) RequiresOptIn() bool {
	return t == TemperamentReactive || t == TemperamentAggressive
}

type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// Ordinal places the level on the low < medium < high scale; -1 if unknown.
func (e EnergyLevel) Ordinal() int {
	switch e {
	case EnergyLow:
		return 0
	case EnergyMedium:
		return 1
	case EnergyHigh:
		return 2
	}
	return -1
}

func (e EnergyLevel) Valid() bool {
	return e.Ordinal() >= 0
}

type SpecialNeed string

const (
	NeedNone       SpecialNeed = "none"
	NeedMedication SpecialNeed = "medication"
	NeedTraining   SpecialNeed = "training"
	NeedMobility   SpecialNeed = "mobility"
	NeedSenior     SpecialNeed = "senior_care"
	NeedPuppy      SpecialNeed = "puppy_care"
	NeedDiet       SpecialNeed = "special_diet"
)

func (n SpecialNeed) Valid() bool {
	switch n {
	case NeedNone, NeedMedication, NeedTraining, NeedMobility, NeedSenior, NeedPuppy, NeedDiet:
		return true
	}
	return false
}

// DogProfile is the dog needing a walk. It belongs to exactly one owner.
type DogProfile struct {
	ID           string           `json:"id"`
	OwnerID      string           `json:"ownerId"`
	Name         string           `json:"name,omitempty"`
	Breed        string           `json:"breed,omitempty"`
	Size         DogSize          `json:"size"`
	Temperament  Temperament      `json:"temperament"`
	EnergyLevel  EnergyLevel      `json:"energyLevel"`
	SpecialNeeds Set[SpecialNeed] `json:"specialNeeds"`
}

// Needs returns the special needs a walker must support, ignoring "none".
func (d DogProfile) Needs() []SpecialNeed {
	var needs []SpecialNeed
	for _, n := range d.SpecialNeeds.Values() {
		if n != NeedNone {
			needs = append(needs, n)
		}
	}
	return needs
}

func (d DogProfile) Validate() error {
	if d.ID == "" {
		return apperrors.NewInvalidInputError("dog", "id is required")
	}
	if !d.Size.Valid() {
		return apperrors.NewInvalidInputError("dog", fmt.Sprintf("dog %s: unknown size %q", d.ID, d.Size))
	}
	if !d.Temperament.Valid() {
		return apperrors.NewInvalidInputError("dog", fmt.Sprintf("dog %s: unknown temperament %q", d.ID, d.Temperament))
	}
	if !d.EnergyLevel.Valid() {
		return apperrors.NewInvalidInputError("dog", fmt.Sprintf("dog %s: unknown energy level %q", d.ID, d.EnergyLevel))
	}
	for n := range d.SpecialNeeds {
		if !n.Valid() {
			return apperrors.NewInvalidInputError("dog", fmt.Sprintf("dog %s: unknown special need %q", d.ID, n))
		}
	}
	return nil
}
