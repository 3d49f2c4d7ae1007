package services

import (
	"context"

	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/observability"
	"stridesync/internal/infrastructure/strava"
	"stridesync/internal/shared/errors"
	"stridesync/internal/shared/logger"
)

// WebhookProcessorService handles provider events after the HTTP
// acknowledgment has already gone out. Every error path here ends in a
// log line, never a propagated error: the reconciliation sweep is the
// retry mechanism, not this processor.
type WebhookProcessorService struct {
	credRepo integration.Repository
	tokens   *TokenLifecycleService
	importer *ImporterService
	provider ProviderClient
	metrics  *observability.Metrics
	logger   logger.Interface
}

func NewWebhookProcessorService(
	credRepo integration.Repository,
	tokens *TokenLifecycleService,
	importer *ImporterService,
	provider ProviderClient,
	metrics *observability.Metrics,
	logger logger.Interface,
) *WebhookProcessorService {
	return &WebhookProcessorService{
		credRepo: credRepo,
		tokens:   tokens,
		importer: importer,
		provider: provider,
		metrics:  metrics,
		logger:   logger,
	}
}

// Process runs one attempt at importing the activity behind an event.
// Non-create and non-activity events are dropped, as are events whose
// athlete has no connected credential here.
func (s *WebhookProcessorService) Process(ctx context.Context, event strava.WebhookEvent) {
	if !event.IsActivityCreate() {
		s.logger.Debugw("ignoring webhook event",
			"object_type", event.ObjectType,
			"aspect_type", event.AspectType)
		s.metrics.WebhookEventsDropped.Inc()
		return
	}

	cred, err := s.credRepo.GetByAthleteID(ctx, integration.ProviderStrava, event.AthleteID())
	if err != nil {
		s.logger.Errorw("failed to resolve webhook athlete", "athlete_id", event.AthleteID(), "error", err)
		s.metrics.WebhookEventsDropped.Inc()
		return
	}
	if cred == nil {
		// Not one of our users; the provider fans events out per
		// application, not per athlete we know about.
		s.logger.Debugw("dropping event for unknown athlete", "athlete_id", event.AthleteID())
		s.metrics.WebhookEventsDropped.Inc()
		return
	}

	accessToken, err := s.ensureToken(ctx, cred)
	if err != nil {
		s.logger.Warnw("webhook import aborted at token stage",
			"user_id", cred.UserID,
			"activity_id", event.ActivityID(),
			"error", err)
		return
	}

	activity, err := s.provider.FetchActivity(ctx, accessToken, event.ActivityID())
	if err != nil {
		s.handleProviderErr(ctx, cred, "fetch activity", event.ActivityID(), err)
		return
	}

	if !activity.IsRun() {
		s.logger.Debugw("skipping non-run activity",
			"user_id", cred.UserID,
			"activity_id", activity.ID,
			"sport_type", activity.SportType)
		return
	}

	result := s.importer.Import(ctx, cred.UserID, *activity)
	switch result.Outcome {
	case OutcomeImported:
		s.metrics.ActivitiesImported.Inc()
		if err := s.credRepo.TouchLastSynced(ctx, cred.ID); err != nil {
			s.logger.Warnw("failed to update last synced time", "user_id", cred.UserID, "error", err)
		}
	case OutcomeSkipped:
		s.metrics.ActivitiesSkipped.Inc()
	case OutcomeFailed:
		s.metrics.ActivitiesFailed.Inc()
		s.logger.Errorw("webhook import failed",
			"user_id", cred.UserID,
			"activity_id", result.ExternalID,
			"error", result.Err)
	}
}

func (s *WebhookProcessorService) ensureToken(ctx context.Context, cred *integration.Credential) (string, error) {
	accessToken, err := ensureTokenWithWriteback(ctx, s.credRepo, s.tokens, s.metrics, cred)
	if err != nil {
		if errors.IsTerminal(err) {
			s.disconnect(ctx, cred)
		}
		return "", err
	}
	return accessToken, nil
}

func (s *WebhookProcessorService) handleProviderErr(ctx context.Context, cred *integration.Credential, stage, activityID string, err error) {
	if errors.IsTerminal(err) {
		s.disconnect(ctx, cred)
	}
	s.logger.Warnw("provider call failed during webhook processing",
		"user_id", cred.UserID,
		"stage", stage,
		"activity_id", activityID,
		"transient", errors.IsTransient(err),
		"error", err)
}

func (s *WebhookProcessorService) disconnect(ctx context.Context, cred *integration.Credential) {
	s.logger.Warnw("disconnecting credential after terminal provider error",
		"user_id", cred.UserID,
		"provider", cred.Provider)
	if err := s.credRepo.Disconnect(ctx, cred.UserID, cred.Provider); err != nil {
		s.logger.Errorw("failed to disconnect credential", "user_id", cred.UserID, "error", err)
	}
}
