// Package repotest provides an in-memory repository.Store for handler tests.
package repotest

import (
	"context"
	"sync"

	apperrors "dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/models"
)

// MemoryStore is a concurrency-safe repository.Store backed by slices.
// Setting an *Err field makes the matching call fail.
type MemoryStore struct {
	mu sync.Mutex

	Walkers  []models.WalkerProfile
	Dogs     []models.DogProfile
	Requests map[string]models.WalkRequest

	WalkersErr error
	DogsErr    error
	UpdateErr  error

	Updates []models.WalkRequest
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Requests: map[string]models.WalkRequest{}}
}

// PutRequest stores or replaces a walk request.
func (s *MemoryStore) PutRequest(r models.WalkRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests[r.ID] = r
}

func (s *MemoryStore) ListWalkers(context.Context) ([]models.WalkerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WalkersErr != nil {
		return nil, s.WalkersErr
	}
	return append([]models.WalkerProfile(nil), s.Walkers...), nil
}

func (s *MemoryStore) ListDogsByOwner(_ context.Context, ownerID string) ([]models.DogProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DogsErr != nil {
		return nil, s.DogsErr
	}
	var dogs []models.DogProfile
	for _, d := range s.Dogs {
		if d.OwnerID == ownerID {
			dogs = append(dogs, d)
		}
	}
	return dogs, nil
}

func (s *MemoryStore) ListWalkRequests(_ context.Context, ownerID string) ([]models.WalkRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WalkRequest
	for _, r := range s.Requests {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetWalkRequest(_ context.Context, requestID string) (*models.WalkRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.Requests[requestID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("walk_requests", "walk request "+requestID+" not found")
	}
	return &r, nil
}

func (s *MemoryStore) UpdateWalkRequest(_ context.Context, request *models.WalkRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if _, ok := s.Requests[request.ID]; !ok {
		return apperrors.NewResourceNotFoundError("walk_requests", "walk request "+request.ID+" not found")
	}
	s.Requests[request.ID] = *request
	s.Updates = append(s.Updates, *request)
	return nil
}
