package services

import (
	"context"

	"stridesync/internal/domain/integration"
	"stridesync/internal/domain/workout"
	"stridesync/internal/infrastructure/strava"
	"stridesync/internal/shared/errors"
	"stridesync/internal/shared/logger"
)

// ImportOutcome classifies what happened to a single activity.
type ImportOutcome string

const (
	OutcomeImported ImportOutcome = "imported"
	OutcomeSkipped  ImportOutcome = "skipped"
	OutcomeFailed   ImportOutcome = "failed"
)

// ImportResult carries the outcome for one activity. Err is only set on
// OutcomeFailed and is for logging; importer errors never cross a batch
// boundary.
type ImportResult struct {
	Outcome    ImportOutcome
	ExternalID string
	Err        error
}

// typeBySport maps the provider's sport taxonomy onto the product's
// workout types. Unrecognized sports import as base rather than failing.
var typeBySport = map[string]workout.Type{
	"Run":        workout.TypeEasyRun,
	"TrailRun":   workout.TypeTrailRun,
	"VirtualRun": workout.TypeTreadmill,
	"Treadmill":  workout.TypeTreadmill,
	"Workout":    workout.TypeWorkout,
	"Race":       workout.TypeRace,
}

// ImporterService turns provider activities into stored workouts,
// exactly once per (owner, provider, external id).
type ImporterService struct {
	workoutRepo workout.Repository
	logger      logger.Interface
}

func NewImporterService(workoutRepo workout.Repository, logger logger.Interface) *ImporterService {
	return &ImporterService{
		workoutRepo: workoutRepo,
		logger:      logger,
	}
}

// Import stores one activity for the owner. Returns Skipped when the
// activity is already imported, checked before any write. Persistence
// errors come back as a Failed result, never as a returned error, so a
// batch caller can log and move on.
func (s *ImporterService) Import(ctx context.Context, ownerID uint, activity strava.Activity) ImportResult {
	exists, err := s.workoutRepo.ExistsByExternalID(ctx, ownerID, integration.ProviderStrava, activity.ID)
	if err != nil {
		return ImportResult{Outcome: OutcomeFailed, ExternalID: activity.ID, Err: err}
	}
	if exists {
		return ImportResult{Outcome: OutcomeSkipped, ExternalID: activity.ID}
	}

	workoutType, ok := typeBySport[activity.SportType]
	if !ok {
		workoutType = workout.TypeBase
	}

	w, err := workout.NewImported(ownerID, integration.ProviderStrava, activity.ID, activity.StartDate, activity.Distance, activity.MovingTime, workoutType, activity.Name)
	if err != nil {
		return ImportResult{Outcome: OutcomeFailed, ExternalID: activity.ID, Err: err}
	}

	if err := s.workoutRepo.Create(ctx, w); err != nil {
		// A concurrent import can slip between the dedup check and the
		// insert; the unique index resolves it to one stored record.
		if intErr := errors.GetIntegrationError(err); intErr != nil && intErr.Type == errors.ErrorTypeImportConflict {
			return ImportResult{Outcome: OutcomeSkipped, ExternalID: activity.ID}
		}
		return ImportResult{Outcome: OutcomeFailed, ExternalID: activity.ID, Err: err}
	}

	s.logger.Infow("imported activity",
		"owner_id", ownerID,
		"external_id", activity.ID,
		"workout_type", string(workoutType),
		"distance_km", w.DistanceKm)

	return ImportResult{Outcome: OutcomeImported, ExternalID: activity.ID}
}
