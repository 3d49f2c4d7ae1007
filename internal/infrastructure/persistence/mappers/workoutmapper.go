package mappers

import (
	"stridesync/internal/domain/workout"
	"stridesync/internal/infrastructure/persistence/models"
)

// WorkoutMapper handles the conversion between domain entities and
// persistence models.
type WorkoutMapper interface {
	ToModel(entity *workout.Workout) *models.WorkoutModel
	ToDomain(model *models.WorkoutModel) *workout.Workout
}

type workoutMapper struct{}

// NewWorkoutMapper creates a new WorkoutMapper.
func NewWorkoutMapper() WorkoutMapper {
	return &workoutMapper{}
}

func (m *workoutMapper) ToModel(entity *workout.Workout) *models.WorkoutModel {
	if entity == nil {
		return nil
	}
	return &models.WorkoutModel{
		ID:              entity.ID,
		OwnerID:         entity.OwnerID,
		Provider:        entity.Provider,
		ExternalID:      entity.ExternalID,
		Date:            entity.Date,
		DistanceKm:      entity.DistanceKm,
		DurationSeconds: entity.DurationSeconds,
		PaceSecPerKm:    entity.PaceSecPerKm,
		WorkoutType:     string(entity.WorkoutType),
		Notes:           entity.Notes,
		ImportedAt:      entity.ImportedAt,
	}
}

func (m *workoutMapper) ToDomain(model *models.WorkoutModel) *workout.Workout {
	if model == nil {
		return nil
	}
	return &workout.Workout{
		ID:              model.ID,
		OwnerID:         model.OwnerID,
		Provider:        model.Provider,
		ExternalID:      model.ExternalID,
		Date:            model.Date,
		DistanceKm:      model.DistanceKm,
		DurationSeconds: model.DurationSeconds,
		PaceSecPerKm:    model.PaceSecPerKm,
		WorkoutType:     workout.Type(model.WorkoutType),
		Notes:           model.Notes,
		ImportedAt:      model.ImportedAt,
	}
}
