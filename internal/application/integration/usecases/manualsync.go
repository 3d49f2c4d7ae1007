package usecases

import (
	"context"
	"time"

	"stridesync/internal/application/integration/services"
	"stridesync/internal/domain/integration"
	"stridesync/internal/shared/errors"
	"stridesync/internal/shared/logger"
)

// Lookback bounds for a user-triggered sync. Values outside the range
// are clamped, not rejected.
const (
	MinSyncLookback     = time.Hour
	MaxSyncLookback     = 7 * 24 * time.Hour
	DefaultSyncLookback = 24 * time.Hour
)

type ManualSyncCommand struct {
	UserID uint
	// LookbackHours 0 means the default window.
	LookbackHours int
}

type ManualSyncResult struct {
	ImportedCount   int `json:"imported_count"`
	ConsideredCount int `json:"considered_count"`
}

// ManualSyncUseCase runs an on-demand import pass for one user, same
// pipeline as the periodic sweep.
type ManualSyncUseCase struct {
	credRepo   integration.Repository
	reconciler *services.ReconcilerService
	logger     logger.Interface
}

func NewManualSyncUseCase(
	credRepo integration.Repository,
	reconciler *services.ReconcilerService,
	logger logger.Interface,
) *ManualSyncUseCase {
	return &ManualSyncUseCase{
		credRepo:   credRepo,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (uc *ManualSyncUseCase) Execute(ctx context.Context, cmd ManualSyncCommand) (*ManualSyncResult, error) {
	cred, err := uc.credRepo.GetByUserID(ctx, cmd.UserID, integration.ProviderStrava)
	if err != nil {
		return nil, err
	}
	if cred == nil || !cred.Connected {
		return nil, errors.NewNotConnectedError()
	}

	since := time.Now().Add(-clampLookback(cmd.LookbackHours))
	imported, considered, err := uc.reconciler.SyncAccount(ctx, cred, since)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("manual sync finished",
		"user_id", cmd.UserID,
		"imported", imported,
		"considered", considered)
	return &ManualSyncResult{ImportedCount: imported, ConsideredCount: considered}, nil
}

func clampLookback(hours int) time.Duration {
	if hours <= 0 {
		return DefaultSyncLookback
	}
	lookback := time.Duration(hours) * time.Hour
	if lookback < MinSyncLookback {
		return MinSyncLookback
	}
	if lookback > MaxSyncLookback {
		return MaxSyncLookback
	}
	return lookback
}
