// Package geo holds pure geographic computations used by matching.
package geo

import (
	"math"

	"dogwalk-workers/internal/models"
)

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometres between a and b
// using the haversine formula.
func Distance(a, b models.Coordinate) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLng := degreesToRadians(b.Longitude - a.Longitude)

	rLat1 := degreesToRadians(a.Latitude)
	rLat2 := degreesToRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h a hair outside [0,1] for near-antipodal points
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// DistanceBetween is Distance for optional points. ok is false when either
// point is absent.
func DistanceBetween(a, b *models.Coordinate) (km float64, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return Distance(*a, *b), true
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
