package services

import (
	"context"
	"time"

	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/observability"
	"stridesync/internal/shared/errors"
	"stridesync/internal/shared/logger"
)

// DefaultLookback bounds how far back a sweep looks when a credential
// has no recorded sync yet or has been idle longer than the window.
const DefaultLookback = 24 * time.Hour

// ReconcilerService is the periodic backstop behind the webhook path:
// it sweeps every connected credential and imports anything webhooks
// missed. Failures are isolated per account; one revoked grant never
// aborts the sweep.
type ReconcilerService struct {
	credRepo integration.Repository
	tokens   *TokenLifecycleService
	importer *ImporterService
	provider ProviderClient
	metrics  *observability.Metrics
	logger   logger.Interface
	lookback time.Duration
	now      func() time.Time
}

func NewReconcilerService(
	credRepo integration.Repository,
	tokens *TokenLifecycleService,
	importer *ImporterService,
	provider ProviderClient,
	metrics *observability.Metrics,
	logger logger.Interface,
) *ReconcilerService {
	return &ReconcilerService{
		credRepo: credRepo,
		tokens:   tokens,
		importer: importer,
		provider: provider,
		metrics:  metrics,
		logger:   logger,
		lookback: DefaultLookback,
		now:      time.Now,
	}
}

// SetLookback overrides the default sweep horizon.
func (s *ReconcilerService) SetLookback(d time.Duration) {
	if d > 0 {
		s.lookback = d
	}
}

// Execute runs one full sweep and returns how many activities were
// imported across all accounts.
func (s *ReconcilerService) Execute(ctx context.Context) (int, error) {
	creds, err := s.credRepo.ListConnected(ctx, integration.ProviderStrava)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, cred := range creds {
		select {
		case <-ctx.Done():
			return imported, ctx.Err()
		default:
		}
		imported += s.reconcileAccount(ctx, cred)
	}

	s.metrics.ReconciliationRuns.Inc()
	s.logger.Infow("reconciliation sweep finished",
		"accounts", len(creds),
		"imported", imported)
	return imported, nil
}

// SyncAccount imports activities for one credential from the given
// horizon onward. The manual sync endpoint passes the user's requested
// window directly; the periodic sweep narrows it by lastSyncedAt first.
func (s *ReconcilerService) SyncAccount(ctx context.Context, cred *integration.Credential, since time.Time) (imported, considered int, err error) {
	accessToken, err := s.ensureToken(ctx, cred)
	if err != nil {
		return 0, 0, err
	}

	activities, err := s.provider.ListActivities(ctx, accessToken, since)
	if err != nil {
		if errors.IsTerminal(err) {
			s.disconnect(ctx, cred)
		}
		return 0, 0, err
	}

	for _, activity := range activities {
		if !activity.IsRun() {
			continue
		}
		considered++
		result := s.importer.Import(ctx, cred.UserID, activity)
		switch result.Outcome {
		case OutcomeImported:
			imported++
			s.metrics.ActivitiesImported.Inc()
		case OutcomeSkipped:
			s.metrics.ActivitiesSkipped.Inc()
		case OutcomeFailed:
			s.metrics.ActivitiesFailed.Inc()
			s.logger.Errorw("import failed during sync",
				"user_id", cred.UserID,
				"activity_id", result.ExternalID,
				"error", result.Err)
		}
	}

	if err := s.credRepo.TouchLastSynced(ctx, cred.ID); err != nil {
		s.logger.Warnw("failed to update last synced time", "user_id", cred.UserID, "error", err)
	}
	return imported, considered, nil
}

func (s *ReconcilerService) reconcileAccount(ctx context.Context, cred *integration.Credential) int {
	imported, _, err := s.SyncAccount(ctx, cred, s.since(cred))
	if err != nil {
		s.logger.Warnw("account skipped during reconciliation",
			"user_id", cred.UserID,
			"transient", errors.IsTransient(err),
			"error", err)
	}
	return imported
}

// since picks the sweep's fetch horizon: lastSyncedAt when it is more
// recent than the lookback window, the window edge otherwise. A fresh
// connection with no sync yet gets the full window.
func (s *ReconcilerService) since(cred *integration.Credential) time.Time {
	edge := s.now().Add(-s.lookback)
	if cred.LastSyncedAt != nil && cred.LastSyncedAt.After(edge) {
		return *cred.LastSyncedAt
	}
	return edge
}

func (s *ReconcilerService) ensureToken(ctx context.Context, cred *integration.Credential) (string, error) {
	accessToken, err := ensureTokenWithWriteback(ctx, s.credRepo, s.tokens, s.metrics, cred)
	if err != nil {
		if errors.IsTerminal(err) {
			s.disconnect(ctx, cred)
		}
		return "", err
	}
	return accessToken, nil
}

func (s *ReconcilerService) disconnect(ctx context.Context, cred *integration.Credential) {
	s.logger.Warnw("disconnecting credential after terminal provider error",
		"user_id", cred.UserID,
		"provider", cred.Provider)
	if err := s.credRepo.Disconnect(ctx, cred.UserID, cred.Provider); err != nil {
		s.logger.Errorw("failed to disconnect credential", "user_id", cred.UserID, "error", err)
	}
}
