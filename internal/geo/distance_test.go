package geo

import (
	"math"
	"testing"

	"dogwalk-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDistance_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      models.Coordinate
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         models.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
			b:         models.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
			wantKm:    0,
			tolerance: 1e-9,
		},
		{
			name:      "one degree of latitude",
			a:         models.Coordinate{Latitude: 0, Longitude: 0},
			b:         models.Coordinate{Latitude: 1, Longitude: 0},
			wantKm:    111.195,
			tolerance: 0.01,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			a:         models.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
			b:         models.Coordinate{Latitude: 34.0522, Longitude: -118.2437},
			wantKm:    3944,
			tolerance: 50,
		},
		{
			name:      "antipodes",
			a:         models.Coordinate{Latitude: 10, Longitude: 20},
			b:         models.Coordinate{Latitude: -10, Longitude: -160},
			wantKm:    math.Pi * EarthRadiusKm,
			tolerance: 0.01,
		},
		{
			name:      "pole to pole",
			a:         models.Coordinate{Latitude: 90, Longitude: 0},
			b:         models.Coordinate{Latitude: -90, Longitude: 0},
			wantKm:    20015.09,
			tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantKm, Distance(tt.a, tt.b), tt.tolerance)
		})
	}
}

func TestDistance_Symmetry(t *testing.T) {
	points := samplePoints()
	for _, a := range points {
		for _, b := range points {
			assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
		}
	}
}

func TestDistance_SelfIsZero(t *testing.T) {
	for _, p := range samplePoints() {
		assert.Equal(t, 0.0, Distance(p, p))
	}
}

func TestDistance_TriangleInequality(t *testing.T) {
	points := samplePoints()
	for _, a := range points {
		for _, b := range points {
			for _, c := range points {
				assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c)+1e-6)
			}
		}
	}
}

func TestDistanceBetween_MissingPoint(t *testing.T) {
	p := &models.Coordinate{Latitude: 1, Longitude: 1}

	_, ok := DistanceBetween(nil, p)
	assert.False(t, ok)
	_, ok = DistanceBetween(p, nil)
	assert.False(t, ok)

	km, ok := DistanceBetween(p, p)
	assert.True(t, ok)
	assert.Zero(t, km)
}

func samplePoints() []models.Coordinate {
	return []models.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 51.5074, Longitude: -0.1278},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 89.9, Longitude: 45},
		{Latitude: -45, Longitude: -179.9},
		{Latitude: 40.7306, Longitude: -73.9352},
	}
}
