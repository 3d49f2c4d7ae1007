package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/observability"
	"stridesync/internal/infrastructure/strava"
	"stridesync/internal/shared/errors"
)

type reconcilerFixture struct {
	credRepo    *mockCredentialRepository
	workoutRepo *mockWorkoutRepository
	provider    *mockProviderClient
	svc         *ReconcilerService
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	cipher := testCipher(t)
	credRepo := new(mockCredentialRepository)
	workoutRepo := new(mockWorkoutRepository)
	provider := new(mockProviderClient)
	log := testLogger()

	tokens := NewTokenLifecycleService(cipher, provider, log)
	importer := NewImporterService(workoutRepo, log)
	return &reconcilerFixture{
		credRepo:    credRepo,
		workoutRepo: workoutRepo,
		provider:    provider,
		svc:         NewReconcilerService(credRepo, tokens, importer, provider, observability.NewTestMetrics(), log),
	}
}

func connectedCredential(t *testing.T, userID uint, credID uint) *integration.Credential {
	t.Helper()
	cred := encryptedCredential(t, testCipher(t), time.Now().Add(time.Hour).Unix())
	cred.UserID = userID
	cred.ID = credID
	return cred
}

func TestExecute_SweepsAllConnectedAccounts(t *testing.T) {
	f := newReconcilerFixture(t)
	credA := connectedCredential(t, 1, 10)
	credB := connectedCredential(t, 2, 20)

	f.credRepo.On("ListConnected", mock.Anything, integration.ProviderStrava).
		Return([]*integration.Credential{credA, credB}, nil)
	f.provider.On("ListActivities", mock.Anything, "plain-access", mock.Anything).
		Return([]strava.Activity{testActivity("777", "Run"), testActivity("888", "Ride")}, nil)
	f.workoutRepo.On("ExistsByExternalID", mock.Anything, mock.Anything, integration.ProviderStrava, "777").Return(false, nil)
	f.workoutRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.credRepo.On("TouchLastSynced", mock.Anything, mock.Anything).Return(nil)

	imported, err := f.svc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, imported, "one run per account; rides are filtered out")

	f.credRepo.AssertCalled(t, "TouchLastSynced", mock.Anything, uint(10))
	f.credRepo.AssertCalled(t, "TouchLastSynced", mock.Anything, uint(20))
}

func TestExecute_IsolatesAccountFailures(t *testing.T) {
	f := newReconcilerFixture(t)

	// First account's refresh token is revoked; second account is fine.
	revoked := encryptedCredential(t, testCipher(t), time.Now().Add(-time.Hour).Unix())
	revoked.UserID = 1
	revoked.ID = 10
	healthy := connectedCredential(t, 2, 20)

	f.credRepo.On("ListConnected", mock.Anything, integration.ProviderStrava).
		Return([]*integration.Credential{revoked, healthy}, nil)
	f.provider.On("RefreshToken", mock.Anything, "plain-refresh").
		Return(nil, errors.NewProviderAuthError("token refresh", "invalid_grant"))
	f.credRepo.On("Disconnect", mock.Anything, uint(1), integration.ProviderStrava).Return(nil)

	f.provider.On("ListActivities", mock.Anything, "plain-access", mock.Anything).
		Return([]strava.Activity{testActivity("777", "Run")}, nil)
	f.workoutRepo.On("ExistsByExternalID", mock.Anything, uint(2), integration.ProviderStrava, "777").Return(false, nil)
	f.workoutRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.credRepo.On("TouchLastSynced", mock.Anything, uint(20)).Return(nil)

	imported, err := f.svc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, imported, "the healthy account still syncs")

	f.credRepo.AssertCalled(t, "Disconnect", mock.Anything, uint(1), integration.ProviderStrava)
	f.credRepo.AssertNotCalled(t, "TouchLastSynced", mock.Anything, uint(10))
}

func TestExecute_RateLimitSkipsAccountWithoutDisconnect(t *testing.T) {
	f := newReconcilerFixture(t)
	cred := connectedCredential(t, 1, 10)

	f.credRepo.On("ListConnected", mock.Anything, integration.ProviderStrava).
		Return([]*integration.Credential{cred}, nil)
	f.provider.On("ListActivities", mock.Anything, "plain-access", mock.Anything).
		Return(nil, errors.NewProviderRateLimitError())

	imported, err := f.svc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, imported)
	f.credRepo.AssertNotCalled(t, "Disconnect", mock.Anything, mock.Anything, mock.Anything)
	f.credRepo.AssertNotCalled(t, "TouchLastSynced", mock.Anything, mock.Anything)
}

func TestExecute_CancelledContextStopsSweep(t *testing.T) {
	f := newReconcilerFixture(t)

	f.credRepo.On("ListConnected", mock.Anything, integration.ProviderStrava).
		Return([]*integration.Credential{connectedCredential(t, 1, 10)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	f.provider.AssertNotCalled(t, "ListActivities", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_FetchHorizon(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	runSweep := func(t *testing.T, cred *integration.Credential, wantSince time.Time) {
		t.Helper()
		f := newReconcilerFixture(t)
		f.svc.now = func() time.Time { return now }

		f.credRepo.On("ListConnected", mock.Anything, integration.ProviderStrava).
			Return([]*integration.Credential{cred}, nil)
		f.provider.On("ListActivities", mock.Anything, "plain-access", wantSince).
			Return([]strava.Activity{}, nil)
		f.credRepo.On("TouchLastSynced", mock.Anything, cred.ID).Return(nil)

		_, err := f.svc.Execute(context.Background())
		require.NoError(t, err)
		f.provider.AssertExpectations(t)
	}

	t.Run("recent last sync wins over window edge", func(t *testing.T) {
		cred := connectedCredential(t, 1, 10)
		lastSynced := now.Add(-2 * time.Hour)
		cred.LastSyncedAt = &lastSynced
		runSweep(t, cred, lastSynced)
	})

	t.Run("stale last sync is clamped to the window", func(t *testing.T) {
		cred := connectedCredential(t, 1, 10)
		lastSynced := now.Add(-72 * time.Hour)
		cred.LastSyncedAt = &lastSynced
		runSweep(t, cred, now.Add(-DefaultLookback))
	})

	t.Run("never synced gets the full window", func(t *testing.T) {
		cred := connectedCredential(t, 1, 10)
		cred.LastSyncedAt = nil
		runSweep(t, cred, now.Add(-DefaultLookback))
	})
}

func TestSyncAccount_CountsConsideredAndImported(t *testing.T) {
	f := newReconcilerFixture(t)
	cred := connectedCredential(t, 1, 10)

	f.provider.On("ListActivities", mock.Anything, "plain-access", mock.Anything).
		Return([]strava.Activity{
			testActivity("1", "Run"),
			testActivity("2", "Run"),
			testActivity("3", "Ride"),
		}, nil)
	f.workoutRepo.On("ExistsByExternalID", mock.Anything, uint(1), integration.ProviderStrava, "1").Return(true, nil)
	f.workoutRepo.On("ExistsByExternalID", mock.Anything, uint(1), integration.ProviderStrava, "2").Return(false, nil)
	f.workoutRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.credRepo.On("TouchLastSynced", mock.Anything, uint(10)).Return(nil)

	imported, considered, err := f.svc.SyncAccount(context.Background(), cred, time.Now().Add(-DefaultLookback))
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 2, considered, "the ride never reaches the importer")
}
