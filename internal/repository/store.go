// Package repository loads and stores the entities matching works on.
package repository

import (
	"context"

	"dogwalk-workers/internal/models"
)

// Store is the persistence collaborator used by the matching workers.
type Store interface {
	ListWalkers(ctx context.Context) ([]models.WalkerProfile, error)
	ListDogsByOwner(ctx context.Context, ownerID string) ([]models.DogProfile, error)
	ListWalkRequests(ctx context.Context, ownerID string) ([]models.WalkRequest, error)
	GetWalkRequest(ctx context.Context, requestID string) (*models.WalkRequest, error)
	UpdateWalkRequest(ctx context.Context, request *models.WalkRequest) error
}
