// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/models"
)

const (
	listWalkersQuery = `
		SELECT id, full_name, experience_level, hourly_rate, preferred_dog_sizes,
		       max_distance_km, available_days, preferred_time_slots, preferred_temperaments,
		       accepted_energy_levels, supported_special_needs, latitude, longitude, rating
		FROM walkers
		WHERE active = TRUE
		ORDER BY id`

	listDogsQuery = `
		SELECT id, owner_id, name, breed, size, temperament, energy_level, special_needs
		FROM dogs
		WHERE owner_id = $1
		ORDER BY id`

	walkRequestColumns = `
		SELECT id, owner_id, dog_id, walker_id, latitude, longitude, start_time,
		       duration_minutes, budget, status, notes
		FROM walk_requests`

	listWalkRequestsQuery = walkRequestColumns + `
		WHERE owner_id = $1
		ORDER BY start_time`

	getWalkRequestQuery = walkRequestColumns + `
		WHERE id = $1`

	updateWalkRequestQuery = `
		UPDATE walk_requests
		SET walker_id = $2, status = $3, notes = $4, updated_at = $5
		WHERE id = $1`
)

// PostgresStore reads walkers, dogs and walk requests from postgres.
// Preference sets are stored as JSON arrays and locations as nullable
// latitude/longitude columns.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *PostgresStore) ListWalkers(ctx context.Context) ([]models.WalkerProfile, error) {
	rows, err := s.db.QueryContext(ctx, listWalkersQuery)
	if err != nil {
		return nil, apperrors.NewWalkerPoolLoadFailedError(err)
	}
	defer rows.Close()

	walkers := []models.WalkerProfile{}
	for rows.Next() {
		w, err := scanWalker(rows)
		if err != nil {
			return nil, apperrors.NewWalkerPoolLoadFailedError(err)
		}
		walkers = append(walkers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewWalkerPoolLoadFailedError(err)
	}
	return walkers, nil
}

func scanWalker(row rowScanner) (models.WalkerProfile, error) {
	var (
		w                                               models.WalkerProfile
		experience                                      string
		sizes, days, slots, temperaments, energy, needs []byte
		lat, lng, rating                                sql.NullFloat64
	)

	err := row.Scan(
		&w.ID, &w.FullName, &experience, &w.HourlyRate, &sizes,
		&w.MaxDistanceKm, &days, &slots, &temperaments,
		&energy, &needs, &lat, &lng, &rating,
	)
	if err != nil {
		return w, err
	}

	w.Experience = models.ExperienceLevel(experience)
	w.Location = location(lat, lng)
	if rating.Valid {
		w.Rating = rating.Float64
	}

	decoders := []struct {
		column string
		raw    []byte
		dest   interface{}
	}{
		{"preferred_dog_sizes", sizes, &w.PreferredSizes},
		{"available_days", days, &w.AvailableDays},
		{"preferred_time_slots", slots, &w.PreferredTimeSlots},
		{"preferred_temperaments", temperaments, &w.PreferredTemperaments},
		{"accepted_energy_levels", energy, &w.AcceptedEnergyLevels},
		{"supported_special_needs", needs, &w.SupportedNeeds},
	}
	for _, d := range decoders {
		if err := decodeJSONColumn(d.raw, d.dest); err != nil {
			return w, fmt.Errorf("walker %s column %s: %w", w.ID, d.column, err)
		}
	}
	return w, nil
}

func (s *PostgresStore) ListDogsByOwner(ctx context.Context, ownerID string) ([]models.DogProfile, error) {
	rows, err := s.db.QueryContext(ctx, listDogsQuery, ownerID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list dogs", err)
	}
	defer rows.Close()

	dogs := []models.DogProfile{}
	for rows.Next() {
		var (
			d                              models.DogProfile
			name, breed                    sql.NullString
			size, temperament, energyLevel string
			needs                          []byte
		)
		if err := rows.Scan(&d.ID, &d.OwnerID, &name, &breed, &size, &temperament, &energyLevel, &needs); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list dogs", err)
		}
		d.Name = name.String
		d.Breed = breed.String
		d.Size = models.DogSize(size)
		d.Temperament = models.Temperament(temperament)
		d.EnergyLevel = models.EnergyLevel(energyLevel)
		if err := decodeJSONColumn(needs, &d.SpecialNeeds); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list dogs",
				fmt.Errorf("dog %s column special_needs: %w", d.ID, err))
		}
		dogs = append(dogs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list dogs", err)
	}
	return dogs, nil
}

func (s *PostgresStore) ListWalkRequests(ctx context.Context, ownerID string) ([]models.WalkRequest, error) {
	rows, err := s.db.QueryContext(ctx, listWalkRequestsQuery, ownerID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list walk requests", err)
	}
	defer rows.Close()

	requests := []models.WalkRequest{}
	for rows.Next() {
		r, err := scanWalkRequest(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list walk requests", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list walk requests", err)
	}
	return requests, nil
}

func (s *PostgresStore) GetWalkRequest(ctx context.Context, requestID string) (*models.WalkRequest, error) {
	r, err := scanWalkRequest(s.db.QueryRowContext(ctx, getWalkRequestQuery, requestID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewResourceNotFoundError("postgres", fmt.Sprintf("walk request %s", requestID))
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get walk request", err)
	}
	return &r, nil
}

func scanWalkRequest(row rowScanner) (models.WalkRequest, error) {
	var (
		r               models.WalkRequest
		walkerID, notes sql.NullString
		lat, lng        sql.NullFloat64
		status          string
	)
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.DogID, &walkerID, &lat, &lng, &r.StartTime,
		&r.DurationMinutes, &r.Budget, &status, &notes,
	)
	if err != nil {
		return r, err
	}
	r.WalkerID = walkerID.String
	r.Notes = notes.String
	r.Status = models.WalkStatus(status)
	r.Location = location(lat, lng)
	return r, nil
}

// UpdateWalkRequest persists the assignment fields of a request.
func (s *PostgresStore) UpdateWalkRequest(ctx context.Context, request *models.WalkRequest) error {
	res, err := s.db.ExecContext(ctx, updateWalkRequestQuery,
		request.ID, nullString(request.WalkerID), string(request.Status), nullString(request.Notes), s.now().UTC())
	if err != nil {
		return apperrors.NewWalkRequestUpdateFailedError(request.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewWalkRequestUpdateFailedError(request.ID, err)
	}
	if n == 0 {
		return apperrors.NewResourceNotFoundError("postgres", fmt.Sprintf("walk request %s", request.ID))
	}
	return nil
}

func location(lat, lng sql.NullFloat64) *models.Coordinate {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &models.Coordinate{Latitude: lat.Float64, Longitude: lng.Float64}
}

// decodeJSONColumn treats NULL and empty columns as an empty set.
func decodeJSONColumn(raw []byte, dest interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
