package integration

import "context"

// Repository persists credentials. Implementations must back UpdateTokens
// with a conditional write so concurrent refreshes cannot both win.
type Repository interface {
	// Save inserts the credential, or replaces the existing row for the
	// same (user, provider) pair when the user reconnects.
	Save(ctx context.Context, cred *Credential) error

	// GetByUserID returns nil, nil when the user never connected.
	GetByUserID(ctx context.Context, userID uint, provider string) (*Credential, error)

	// GetByAthleteID resolves an inbound webhook's external account id to
	// a connected credential. Returns nil, nil when no connected match.
	GetByAthleteID(ctx context.Context, provider, athleteID string) (*Credential, error)

	// ListConnected enumerates every connected credential for the sweep.
	ListConnected(ctx context.Context, provider string) ([]*Credential, error)

	// UpdateTokens persists a rotated token pair only if the stored
	// expiry still equals prevExpiresAt. Returns false when a concurrent
	// refresh already rotated the row; the caller must discard its pair.
	UpdateTokens(ctx context.Context, cred *Credential, prevExpiresAt int64) (bool, error)

	// Disconnect clears tokens and the connected flag in one write.
	Disconnect(ctx context.Context, userID uint, provider string) error

	// TouchLastSynced updates the observability timestamp only.
	TouchLastSynced(ctx context.Context, credID uint) error
}
