// Package integration holds the provider connection aggregate: one
// credential per user per provider, carrying the encrypted OAuth token
// pair and connection state.
package integration

import (
	"fmt"
	"time"
)

// ProviderStrava is the only provider currently supported.
const ProviderStrava = "strava"

// Credential is the stored connection state for one user/provider pair.
// Token fields hold ciphertext only; plaintext tokens never reach
// persistence or logs.
type Credential struct {
	ID              uint
	UserID          uint
	Provider        string
	Connected       bool
	AthleteID       string
	AccessTokenEnc  string
	RefreshTokenEnc string
	// ExpiresAt is the access token expiry as epoch seconds.
	ExpiresAt    int64
	LastSyncedAt *time.Time
	ConnectedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewCredential creates a connected credential from a completed
// authorization grant. Both ciphertexts must be present: a connected
// credential never exists in a partial state.
func NewCredential(userID uint, provider, athleteID, accessTokenEnc, refreshTokenEnc string, expiresAt int64) (*Credential, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if athleteID == "" {
		return nil, fmt.Errorf("athlete ID is required")
	}
	if accessTokenEnc == "" || refreshTokenEnc == "" {
		return nil, fmt.Errorf("encrypted token pair is required")
	}

	now := time.Now()
	return &Credential{
		UserID:          userID,
		Provider:        provider,
		Connected:       true,
		AthleteID:       athleteID,
		AccessTokenEnc:  accessTokenEnc,
		RefreshTokenEnc: refreshTokenEnc,
		ExpiresAt:       expiresAt,
		ConnectedAt:     &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// RotateTokens replaces the stored token pair after a refresh.
func (c *Credential) RotateTokens(accessTokenEnc, refreshTokenEnc string, expiresAt int64) error {
	if accessTokenEnc == "" || refreshTokenEnc == "" {
		return fmt.Errorf("encrypted token pair is required")
	}
	c.AccessTokenEnc = accessTokenEnc
	c.RefreshTokenEnc = refreshTokenEnc
	c.ExpiresAt = expiresAt
	c.UpdatedAt = time.Now()
	return nil
}

// Disconnect clears the token pair and the connected flag together.
func (c *Credential) Disconnect() {
	c.Connected = false
	c.AccessTokenEnc = ""
	c.RefreshTokenEnc = ""
	c.ExpiresAt = 0
	c.ConnectedAt = nil
	c.UpdatedAt = time.Now()
}

// NeedsRefresh reports whether the access token is expired or expires
// within the safety margin and must be refreshed before use.
func (c *Credential) NeedsRefresh(now time.Time, margin time.Duration) bool {
	return now.Unix() >= c.ExpiresAt-int64(margin.Seconds())
}

// MarkSynced records a successful import pass.
func (c *Credential) MarkSynced(at time.Time) {
	c.LastSyncedAt = &at
	c.UpdatedAt = time.Now()
}
