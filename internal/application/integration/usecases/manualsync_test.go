package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stridesync/internal/application/integration/services"
	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/observability"
	"stridesync/internal/infrastructure/strava"
	"stridesync/internal/shared/errors"
)

func newManualSyncUseCase(credRepo *mockCredentialRepository, workoutRepo *mockWorkoutRepository, provider *mockProviderClient, t *testing.T) *ManualSyncUseCase {
	t.Helper()
	log := testLogger()
	tokens := services.NewTokenLifecycleService(testCipher(t), provider, log)
	importer := services.NewImporterService(workoutRepo, log)
	reconciler := services.NewReconcilerService(credRepo, tokens, importer, provider, observability.NewTestMetrics(), log)
	return NewManualSyncUseCase(credRepo, reconciler, log)
}

func TestManualSync_ImportsRecentRuns(t *testing.T) {
	credRepo := new(mockCredentialRepository)
	workoutRepo := new(mockWorkoutRepository)
	provider := new(mockProviderClient)
	uc := newManualSyncUseCase(credRepo, workoutRepo, provider, t)

	cred := connectedCredential(t, testCipher(t))
	cred.ID = 7
	credRepo.On("GetByUserID", mock.Anything, uint(42), integration.ProviderStrava).Return(cred, nil)
	provider.On("ListActivities", mock.Anything, "plain-access", mock.MatchedBy(func(since time.Time) bool {
		// default 24h window
		return time.Since(since) > 23*time.Hour && time.Since(since) < 25*time.Hour
	})).Return([]strava.Activity{
		{ID: "1", SportType: "Run", Distance: 5000, MovingTime: 1500, StartDate: time.Now()},
		{ID: "2", SportType: "Ride", Distance: 30000, MovingTime: 3600, StartDate: time.Now()},
	}, nil)
	workoutRepo.On("ExistsByExternalID", mock.Anything, uint(42), integration.ProviderStrava, "1").Return(false, nil)
	workoutRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	credRepo.On("TouchLastSynced", mock.Anything, uint(7)).Return(nil)

	result, err := uc.Execute(context.Background(), ManualSyncCommand{UserID: 42})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)
	assert.Equal(t, 1, result.ConsideredCount)
}

func TestManualSync_NotConnected(t *testing.T) {
	credRepo := new(mockCredentialRepository)
	uc := newManualSyncUseCase(credRepo, new(mockWorkoutRepository), new(mockProviderClient), t)

	credRepo.On("GetByUserID", mock.Anything, uint(42), integration.ProviderStrava).Return(nil, nil)

	_, err := uc.Execute(context.Background(), ManualSyncCommand{UserID: 42})
	assert.True(t, errors.IsNotConnectedError(err))
}

func TestManualSync_PropagatesRateLimit(t *testing.T) {
	credRepo := new(mockCredentialRepository)
	provider := new(mockProviderClient)
	uc := newManualSyncUseCase(credRepo, new(mockWorkoutRepository), provider, t)

	cred := connectedCredential(t, testCipher(t))
	credRepo.On("GetByUserID", mock.Anything, uint(42), integration.ProviderStrava).Return(cred, nil)
	provider.On("ListActivities", mock.Anything, "plain-access", mock.Anything).
		Return(nil, errors.NewProviderRateLimitError())

	_, err := uc.Execute(context.Background(), ManualSyncCommand{UserID: 42})
	assert.True(t, errors.IsProviderRateLimitError(err))
}

func TestClampLookback(t *testing.T) {
	assert.Equal(t, DefaultSyncLookback, clampLookback(0))
	assert.Equal(t, DefaultSyncLookback, clampLookback(-3))
	assert.Equal(t, 48*time.Hour, clampLookback(48))
	assert.Equal(t, MaxSyncLookback, clampLookback(1000))
	assert.Equal(t, MinSyncLookback, clampLookback(1))
}
