package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stridesync/internal/domain/integration"
	"stridesync/internal/domain/workout"
	"stridesync/internal/infrastructure/strava"
	"stridesync/internal/shared/errors"
)

func testActivity(id, sportType string) strava.Activity {
	return strava.Activity{
		ID:         id,
		Name:       "Morning Run",
		SportType:  sportType,
		Distance:   5000,
		MovingTime: 1500,
		StartDate:  time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC),
	}
}

func TestImport_StoresNewActivity(t *testing.T) {
	repo := new(mockWorkoutRepository)
	svc := NewImporterService(repo, testLogger())

	repo.On("ExistsByExternalID", mock.Anything, uint(1), integration.ProviderStrava, "777").Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(w *workout.Workout) bool {
		return w.OwnerID == 1 &&
			w.ExternalID == "777" &&
			w.DistanceKm == 5.0 &&
			w.PaceSecPerKm == 300 &&
			w.WorkoutType == workout.TypeEasyRun &&
			w.Notes == "Morning Run"
	})).Return(nil)

	result := svc.Import(context.Background(), 1, testActivity("777", "Run"))
	assert.Equal(t, OutcomeImported, result.Outcome)
	repo.AssertExpectations(t)
}

func TestImport_SkipsAlreadyImported(t *testing.T) {
	repo := new(mockWorkoutRepository)
	svc := NewImporterService(repo, testLogger())

	repo.On("ExistsByExternalID", mock.Anything, uint(1), integration.ProviderStrava, "777").Return(true, nil)

	result := svc.Import(context.Background(), 1, testActivity("777", "Run"))
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImport_ConflictOnInsertIsSkip(t *testing.T) {
	repo := new(mockWorkoutRepository)
	svc := NewImporterService(repo, testLogger())

	repo.On("ExistsByExternalID", mock.Anything, uint(1), integration.ProviderStrava, "777").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.NewImportConflictError("777"))

	result := svc.Import(context.Background(), 1, testActivity("777", "Run"))
	assert.Equal(t, OutcomeSkipped, result.Outcome)
}

func TestImport_PersistenceErrorIsFailedResult(t *testing.T) {
	repo := new(mockWorkoutRepository)
	svc := NewImporterService(repo, testLogger())

	repo.On("ExistsByExternalID", mock.Anything, uint(1), integration.ProviderStrava, "777").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("connection lost"))

	result := svc.Import(context.Background(), 1, testActivity("777", "Run"))
	assert.Equal(t, OutcomeFailed, result.Outcome)
	require.Error(t, result.Err)
	assert.Equal(t, "777", result.ExternalID)
}

func TestImport_SportTaxonomy(t *testing.T) {
	tests := []struct {
		sportType string
		want      workout.Type
	}{
		{"Run", workout.TypeEasyRun},
		{"TrailRun", workout.TypeTrailRun},
		{"VirtualRun", workout.TypeTreadmill},
		{"Workout", workout.TypeWorkout},
		{"Race", workout.TypeRace},
		{"Wheelchair", workout.TypeBase},
		{"", workout.TypeBase},
	}

	for _, tt := range tests {
		t.Run("sport "+tt.sportType, func(t *testing.T) {
			repo := new(mockWorkoutRepository)
			svc := NewImporterService(repo, testLogger())

			repo.On("ExistsByExternalID", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
			repo.On("Create", mock.Anything, mock.MatchedBy(func(w *workout.Workout) bool {
				return w.WorkoutType == tt.want
			})).Return(nil)

			result := svc.Import(context.Background(), 1, testActivity("1", tt.sportType))
			assert.Equal(t, OutcomeImported, result.Outcome)
			repo.AssertExpectations(t)
		})
	}
}

func TestImport_ZeroDistanceActivity(t *testing.T) {
	repo := new(mockWorkoutRepository)
	svc := NewImporterService(repo, testLogger())

	activity := testActivity("777", "Run")
	activity.Distance = 0

	repo.On("ExistsByExternalID", mock.Anything, uint(1), integration.ProviderStrava, "777").Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(w *workout.Workout) bool {
		return w.DistanceKm == 0 && w.PaceSecPerKm == 0
	})).Return(nil)

	result := svc.Import(context.Background(), 1, activity)
	assert.Equal(t, OutcomeImported, result.Outcome)
	repo.AssertExpectations(t)
}
