// Package services holds the sync engine's application services: token
// lifecycle, activity import, webhook processing and periodic
// reconciliation.
package services

import (
	"context"
	"time"

	"stridesync/internal/infrastructure/strava"
)

// ProviderClient is the provider API surface the sync engine needs.
// Satisfied by *strava.Client.
type ProviderClient interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*strava.TokenGrant, error)
	RefreshToken(ctx context.Context, refreshToken string) (*strava.TokenGrant, error)
	ListActivities(ctx context.Context, accessToken string, after time.Time) ([]strava.Activity, error)
	FetchActivity(ctx context.Context, accessToken, externalID string) (*strava.Activity, error)
	Deauthorize(ctx context.Context, accessToken string) error
}
