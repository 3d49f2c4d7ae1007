package handlers

import (
	"context"

	"stridesync/internal/application/integration/usecases"
	"stridesync/internal/infrastructure/dispatch"
	"stridesync/internal/infrastructure/strava"
)

// Use case interfaces for the handlers - enables unit testing with mocks.

type connectUseCase interface {
	Execute(userID uint) *usecases.ConnectStravaResult
}

type callbackUseCase interface {
	Execute(ctx context.Context, cmd usecases.HandleStravaCallbackCommand) *usecases.HandleStravaCallbackResult
}

type disconnectUseCase interface {
	Execute(ctx context.Context, userID uint) error
}

type statusUseCase interface {
	Execute(ctx context.Context, userID uint) (*usecases.IntegrationStatus, error)
}

type syncUseCase interface {
	Execute(ctx context.Context, cmd usecases.ManualSyncCommand) (*usecases.ManualSyncResult, error)
}

type eventProcessor interface {
	Process(ctx context.Context, event strava.WebhookEvent)
}

type taskDispatcher interface {
	Enqueue(name string, task dispatch.Task) error
}
