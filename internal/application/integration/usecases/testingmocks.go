package usecases

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"stridesync/internal/domain/integration"
	"stridesync/internal/domain/workout"
	"stridesync/internal/infrastructure/strava"
	"stridesync/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockCredentialRepository struct {
	mock.Mock
}

func (m *mockCredentialRepository) Save(ctx context.Context, cred *integration.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *mockCredentialRepository) GetByUserID(ctx context.Context, userID uint, provider string) (*integration.Credential, error) {
	args := m.Called(ctx, userID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Credential), args.Error(1)
}

func (m *mockCredentialRepository) GetByAthleteID(ctx context.Context, provider, athleteID string) (*integration.Credential, error) {
	args := m.Called(ctx, provider, athleteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Credential), args.Error(1)
}

func (m *mockCredentialRepository) ListConnected(ctx context.Context, provider string) ([]*integration.Credential, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.Credential), args.Error(1)
}

func (m *mockCredentialRepository) UpdateTokens(ctx context.Context, cred *integration.Credential, prevExpiresAt int64) (bool, error) {
	args := m.Called(ctx, cred, prevExpiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockCredentialRepository) Disconnect(ctx context.Context, userID uint, provider string) error {
	args := m.Called(ctx, userID, provider)
	return args.Error(0)
}

func (m *mockCredentialRepository) TouchLastSynced(ctx context.Context, credID uint) error {
	args := m.Called(ctx, credID)
	return args.Error(0)
}

type mockWorkoutRepository struct {
	mock.Mock
}

func (m *mockWorkoutRepository) Create(ctx context.Context, w *workout.Workout) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *mockWorkoutRepository) ExistsByExternalID(ctx context.Context, ownerID uint, provider, externalID string) (bool, error) {
	args := m.Called(ctx, ownerID, provider, externalID)
	return args.Bool(0), args.Error(1)
}

func (m *mockWorkoutRepository) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

type mockProviderClient struct {
	mock.Mock
}

func (m *mockProviderClient) AuthorizationURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockProviderClient) ExchangeCode(ctx context.Context, code string) (*strava.TokenGrant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*strava.TokenGrant), args.Error(1)
}

func (m *mockProviderClient) RefreshToken(ctx context.Context, refreshToken string) (*strava.TokenGrant, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*strava.TokenGrant), args.Error(1)
}

func (m *mockProviderClient) ListActivities(ctx context.Context, accessToken string, after time.Time) ([]strava.Activity, error) {
	args := m.Called(ctx, accessToken, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]strava.Activity), args.Error(1)
}

func (m *mockProviderClient) FetchActivity(ctx context.Context, accessToken, externalID string) (*strava.Activity, error) {
	args := m.Called(ctx, accessToken, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*strava.Activity), args.Error(1)
}

func (m *mockProviderClient) Deauthorize(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}
