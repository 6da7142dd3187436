package matching

import (
	"time"

	"dogwalk-workers/internal/models"
)

// saturdayMorning is 2024-06-01 09:00, a Saturday.
var saturdayMorning = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

var walkerHome = models.Coordinate{Latitude: 40.7128, Longitude: -74.0060}

// offsetNorth returns a point km kilometres due north of c.
func offsetNorth(c models.Coordinate, km float64) *models.Coordinate {
	return &models.Coordinate{Latitude: c.Latitude + km/111.19492664455873, Longitude: c.Longitude}
}

func expertWalker(id string) models.WalkerProfile {
	home := walkerHome
	return models.WalkerProfile{
		ID:                 id,
		FullName:           "Walker " + id,
		Experience:         models.ExperienceExpert,
		HourlyRate:         20,
		PreferredSizes:     models.NewSet(models.SizeMedium, models.SizeLarge),
		MaxDistanceKm:      15,
		AvailableDays:      models.NewSet(time.Saturday),
		PreferredTimeSlots: models.NewSet(models.SlotMorning),
		Location:           &home,
	}
}

func calmDog() models.DogProfile {
	return models.DogProfile{
		ID:           "dog-1",
		OwnerID:      "owner-1",
		Name:         "Biscuit",
		Size:         models.SizeMedium,
		Temperament:  models.TemperamentCalm,
		EnergyLevel:  models.EnergyMedium,
		SpecialNeeds: models.NewSet(models.NeedNone),
	}
}

func saturdayRequest() models.WalkRequest {
	return models.WalkRequest{
		ID:              "req-1",
		OwnerID:         "owner-1",
		DogID:           "dog-1",
		Location:        offsetNorth(walkerHome, 5),
		StartTime:       saturdayMorning,
		DurationMinutes: 45,
		Budget:          30,
		Status:          models.StatusPending,
	}
}

func defaultEngine() *Engine {
	e, err := NewEngine(nil)
	if err != nil {
		panic(err)
	}
	return e
}
