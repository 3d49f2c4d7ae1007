// Package workout holds the product's workout record as produced by the
// activity importer, tagged with its external provenance.
package workout

import (
	"fmt"
	"math"
	"time"
)

// Type is the product's workout taxonomy.
type Type string

const (
	TypeBase      Type = "base"
	TypeEasyRun   Type = "easy_run"
	TypeTrailRun  Type = "trail_run"
	TypeTreadmill Type = "treadmill"
	TypeWorkout   Type = "workout"
	TypeRace      Type = "race"
)

// Workout is an imported run. The (OwnerID, Provider, ExternalID) triple
// is unique: re-importing the same external activity is a no-op.
type Workout struct {
	ID              uint
	OwnerID         uint
	Provider        string
	ExternalID      string
	Date            time.Time
	DistanceKm      float64
	DurationSeconds int
	PaceSecPerKm    int
	WorkoutType     Type
	Notes           string
	ImportedAt      time.Time
}

// NewImported builds a workout from provider units: distance in meters,
// duration in seconds. Zero-distance activities get pace 0.
func NewImported(ownerID uint, provider, externalID string, date time.Time, distanceMeters float64, durationSeconds int, workoutType Type, notes string) (*Workout, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("owner ID is required")
	}
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if externalID == "" {
		return nil, fmt.Errorf("external ID is required")
	}

	distanceKm := math.Round(distanceMeters/1000*100) / 100
	pace := 0
	if distanceKm > 0 {
		pace = int(math.Round(float64(durationSeconds) / distanceKm))
	}

	return &Workout{
		OwnerID:         ownerID,
		Provider:        provider,
		ExternalID:      externalID,
		Date:            date,
		DistanceKm:      distanceKm,
		DurationSeconds: durationSeconds,
		PaceSecPerKm:    pace,
		WorkoutType:     workoutType,
		Notes:           notes,
		ImportedAt:      time.Now(),
	}, nil
}
