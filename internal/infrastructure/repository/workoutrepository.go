package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"stridesync/internal/domain/workout"
	"stridesync/internal/infrastructure/persistence/mappers"
	"stridesync/internal/infrastructure/persistence/models"
	"stridesync/internal/shared/errors"
)

// WorkoutRepository implements the workout.Repository interface using GORM.
type WorkoutRepository struct {
	db     *gorm.DB
	mapper mappers.WorkoutMapper
}

// NewWorkoutRepository creates a new WorkoutRepository.
func NewWorkoutRepository(db *gorm.DB) workout.Repository {
	return &WorkoutRepository{
		db:     db,
		mapper: mappers.NewWorkoutMapper(),
	}
}

// Create inserts an imported workout. A unique-index violation maps to
// ImportConflictError so the importer can treat a lost insert race as a
// skip rather than a failure.
func (r *WorkoutRepository) Create(ctx context.Context, w *workout.Workout) error {
	model := r.mapper.ToModel(w)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewImportConflictError(w.ExternalID)
		}
		return fmt.Errorf("failed to create workout: %w", err)
	}
	w.ID = model.ID
	return nil
}

func (r *WorkoutRepository) ExistsByExternalID(ctx context.Context, ownerID uint, provider, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WorkoutModel{}).
		Where("owner_id = ? AND provider = ? AND external_id = ?", ownerID, provider, externalID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check workout existence: %w", err)
	}
	return count > 0, nil
}

func (r *WorkoutRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WorkoutModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count workouts: %w", err)
	}
	return count, nil
}
