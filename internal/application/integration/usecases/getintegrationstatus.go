package usecases

import (
	"context"
	"time"

	"stridesync/internal/domain/integration"
	"stridesync/internal/domain/workout"
)

// IntegrationStatus is the connection state exposed to the frontend.
// Token material is deliberately absent.
type IntegrationStatus struct {
	Connected    bool       `json:"connected"`
	AthleteID    string     `json:"athlete_id,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	ConnectedAt  *time.Time `json:"connected_at,omitempty"`
	WorkoutCount int64      `json:"workout_count"`
}

type GetIntegrationStatusUseCase struct {
	credRepo    integration.Repository
	workoutRepo workout.Repository
}

func NewGetIntegrationStatusUseCase(credRepo integration.Repository, workoutRepo workout.Repository) *GetIntegrationStatusUseCase {
	return &GetIntegrationStatusUseCase{
		credRepo:    credRepo,
		workoutRepo: workoutRepo,
	}
}

func (uc *GetIntegrationStatusUseCase) Execute(ctx context.Context, userID uint) (*IntegrationStatus, error) {
	cred, err := uc.credRepo.GetByUserID(ctx, userID, integration.ProviderStrava)
	if err != nil {
		return nil, err
	}
	if cred == nil || !cred.Connected {
		return &IntegrationStatus{Connected: false}, nil
	}

	count, err := uc.workoutRepo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &IntegrationStatus{
		Connected:    true,
		AthleteID:    cred.AthleteID,
		LastSyncedAt: cred.LastSyncedAt,
		ConnectedAt:  cred.ConnectedAt,
		WorkoutCount: count,
	}, nil
}
