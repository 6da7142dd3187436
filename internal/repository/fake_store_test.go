package repository

import (
	"context"

	"dogwalk-workers/internal/models"
)

type fakeStore struct {
	walkers     []models.WalkerProfile
	err         error
	walkerCalls int
}

func (f *fakeStore) ListWalkers(context.Context) ([]models.WalkerProfile, error) {
	f.walkerCalls++
	return f.walkers, f.err
}

func (f *fakeStore) ListDogsByOwner(context.Context, string) ([]models.DogProfile, error) {
	return nil, nil
}

func (f *fakeStore) ListWalkRequests(context.Context, string) ([]models.WalkRequest, error) {
	return nil, nil
}

func (f *fakeStore) GetWalkRequest(context.Context, string) (*models.WalkRequest, error) {
	return nil, nil
}

func (f *fakeStore) UpdateWalkRequest(context.Context, *models.WalkRequest) error {
	return nil
}

func samplePool() []models.WalkerProfile {
	return []models.WalkerProfile{
		{
			ID:             "w1",
			FullName:       "Sam Rivers",
			Experience:     models.ExperienceExpert,
			HourlyRate:     20,
			PreferredSizes: models.NewSet(models.SizeMedium),
			MaxDistanceKm:  15,
			Location:       &models.Coordinate{Latitude: 40.71, Longitude: -74.0},
		},
		{
			ID:         "w2",
			FullName:   "Ana Ruiz",
			Experience: models.ExperienceBeginner,
			HourlyRate: 12,
		},
	}
}
