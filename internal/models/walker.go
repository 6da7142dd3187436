// internal/models/walker.go
package models

import (
	"fmt"
	"math"
	"time"

	apperrors "dogwalk-workers/internal/common/errors"
)

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

// Rank orders experience levels; -1 if unknown.
func (e ExperienceLevel) Rank() int {
	switch e {
	case ExperienceBeginner:
		return 0
	case ExperienceIntermediate:
		return 1
	case ExperienceExpert:
		return 2
	}
	return -1
}

func (e ExperienceLevel) Valid() bool {
	return e.Rank() >= 0
}

type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

func (s TimeSlot) Valid() bool {
	switch s {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return true
	}
	return false
}

// SlotAt returns the slot containing t's local hour: morning [05,12),
// afternoon [12,17), evening [17,22). Night hours belong to no slot.
func SlotAt(t time.Time) (TimeSlot, bool) {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return SlotMorning, true
	case h >= 12 && h < 17:
		return SlotAfternoon, true
	case h >= 17 && h < 22:
		return SlotEvening, true
	}
	return "", false
}

// WalkerProfile is a candidate walker. Empty sets and a zero MaxDistanceKm
// mean "no stated preference".
type WalkerProfile struct {
	ID                    string            `json:"id"`
	FullName              string            `json:"fullName"`
	Experience            ExperienceLevel   `json:"experienceLevel"`
	HourlyRate            float64           `json:"hourlyRate"`
	PreferredSizes        Set[DogSize]      `json:"preferredDogSizes"`
	MaxDistanceKm         float64           `json:"maxDistanceKm"`
	AvailableDays         Set[time.Weekday] `json:"availableDays"`
	PreferredTimeSlots    Set[TimeSlot]     `json:"preferredTimeSlots"`
	PreferredTemperaments Set[Temperament]  `json:"preferredTemperaments"`
	AcceptedEnergyLevels  Set[EnergyLevel]  `json:"acceptedEnergyLevels"`
	SupportedNeeds        Set[SpecialNeed]  `json:"supportedSpecialNeeds"`
	Location              *Coordinate       `json:"location,omitempty"`
	Rating                float64           `json:"rating,omitempty"`
}

func (w WalkerProfile) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return apperrors.NewInvalidInputError("walker", fmt.Sprintf("walker %s: ", w.ID)+fmt.Sprintf(format, args...))
	}

	if w.ID == "" {
		return apperrors.NewInvalidInputError("walker", "id is required")
	}
	if !w.Experience.Valid() {
		return invalid("unknown experience level %q", w.Experience)
	}
	if math.IsNaN(w.HourlyRate) || math.IsInf(w.HourlyRate, 0) || w.HourlyRate < 0 {
		return invalid("hourly rate %v must be a non-negative number", w.HourlyRate)
	}
	if math.IsNaN(w.MaxDistanceKm) || math.IsInf(w.MaxDistanceKm, 0) || w.MaxDistanceKm < 0 {
		return invalid("max distance %v must be a non-negative number", w.MaxDistanceKm)
	}
	for d := range w.AvailableDays {
		if d < time.Sunday || d > time.Saturday {
			return invalid("weekday index %d out of range 0-6", d)
		}
	}
	for s := range w.PreferredTimeSlots {
		if !s.Valid() {
			return invalid("unknown time slot %q", s)
		}
	}
	for s := range w.PreferredSizes {
		if !s.Valid() {
			return invalid("unknown dog size %q", s)
		}
	}
	for tm := range w.PreferredTemperaments {
		if !tm.Valid() {
			return invalid("unknown temperament %q", tm)
		}
	}
	for e := range w.AcceptedEnergyLevels {
		if !e.Valid() {
			return invalid("unknown energy level %q", e)
		}
	}
	for n := range w.SupportedNeeds {
		if !n.Valid() {
			return invalid("unknown special need %q", n)
		}
	}
	if err := validateLocation(w.Location); err != nil {
		return invalid("%v", err)
	}
	return nil
}
