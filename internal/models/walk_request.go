// internal/models/walk_request.go
package models

import (
	"fmt"
	"math"
	"time"

	apperrors "dogwalk-workers/internal/common/errors"
)

type WalkStatus string

const (
	StatusPending    WalkStatus = "pending"
	StatusAccepted   WalkStatus = "accepted"
	StatusInProgress WalkStatus = "in_progress"
	StatusCompleted  WalkStatus = "completed"
	StatusCancelled  WalkStatus = "cancelled"
)

func (s WalkStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Matchable reports whether requests in this status are offered to walkers.
func (s WalkStatus) Matchable() bool {
	return s == StatusPending || s == StatusAccepted
}

// WalkRequest is the specific walk being matched.
type WalkRequest struct {
	ID              string      `json:"id"`
	OwnerID         string      `json:"ownerId"`
	DogID           string      `json:"dogId"`
	WalkerID        string      `json:"walkerId,omitempty"`
	Location        *Coordinate `json:"location,omitempty"`
	StartTime       time.Time   `json:"startTime"`
	DurationMinutes int         `json:"durationMinutes"`
	Budget          float64     `json:"budget"`
	Status          WalkStatus  `json:"status"`
	Notes           string      `json:"notes,omitempty"`
}

func (r WalkRequest) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return apperrors.NewInvalidInputError("walk request", fmt.Sprintf("request %s: ", r.ID)+fmt.Sprintf(format, args...))
	}

	if r.OwnerID == "" {
		return invalid("ownerId is required")
	}
	if r.StartTime.IsZero() {
		return invalid("startTime is required")
	}
	if r.DurationMinutes < 0 {
		return invalid("duration %d must not be negative", r.DurationMinutes)
	}
	if math.IsNaN(r.Budget) || math.IsInf(r.Budget, 0) || r.Budget < 0 {
		return invalid("budget %v must be a non-negative number", r.Budget)
	}
	if !r.Status.Valid() {
		return invalid("unknown status %q", r.Status)
	}
	if err := validateLocation(r.Location); err != nil {
		return invalid("%v", err)
	}
	return nil
}
