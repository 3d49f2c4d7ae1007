package services

import (
	"context"
	"time"

	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/crypto"
	"stridesync/internal/infrastructure/observability"
	"stridesync/internal/shared/errors"
	"stridesync/internal/shared/logger"
)

// SafetyMargin is how long before expiry an access token is treated as
// already expired. Activity pagination can outlive a token that expires
// mid-sync, so refreshes happen ahead of the deadline.
const SafetyMargin = 5 * time.Minute

// TokenLifecycleService hands out valid plaintext access tokens for a
// stored credential, refreshing through the provider when the stored
// token is within the safety margin of expiry.
//
// The service never persists anything itself. On refresh it returns the
// rotated credential alongside the token; the caller decides how to
// write it back (conditional update under concurrency, plain save
// otherwise).
type TokenLifecycleService struct {
	cipher   crypto.TokenCipher
	provider ProviderClient
	logger   logger.Interface
	now      func() time.Time
}

// AccessTokenResult is a usable plaintext access token plus the
// credential state it came from.
type AccessTokenResult struct {
	AccessToken string
	// Refreshed is true when the provider rotated the token pair. The
	// Credential then carries the new ciphertexts and expiry and must be
	// written back by the caller.
	Refreshed bool
	// PrevExpiresAt is the expiry the stored credential had before the
	// refresh, for conditional write-backs.
	PrevExpiresAt int64
	Credential    *integration.Credential
}

func NewTokenLifecycleService(
	cipher crypto.TokenCipher,
	provider ProviderClient,
	logger logger.Interface,
) *TokenLifecycleService {
	return &TokenLifecycleService{
		cipher:   cipher,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureValidAccessToken returns a plaintext access token for the
// credential, refreshing it first if it expires within the safety
// margin. Fails fast with a not-connected error for disconnected
// credentials and never returns a decrypted token on partial failure.
func (s *TokenLifecycleService) EnsureValidAccessToken(ctx context.Context, cred *integration.Credential) (*AccessTokenResult, error) {
	if cred == nil || !cred.Connected {
		return nil, errors.NewNotConnectedError()
	}

	prevExpiresAt := cred.ExpiresAt

	if !cred.NeedsRefresh(s.now(), SafetyMargin) {
		accessToken, err := s.cipher.Decrypt(cred.AccessTokenEnc)
		if err != nil {
			return nil, err
		}
		return &AccessTokenResult{
			AccessToken:   accessToken,
			PrevExpiresAt: prevExpiresAt,
			Credential:    cred,
		}, nil
	}

	refreshToken, err := s.cipher.Decrypt(cred.RefreshTokenEnc)
	if err != nil {
		return nil, err
	}

	grant, err := s.provider.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	accessEnc, err := s.cipher.Encrypt(grant.AccessToken)
	if err != nil {
		return nil, err
	}
	refreshEnc, err := s.cipher.Encrypt(grant.RefreshToken)
	if err != nil {
		return nil, err
	}

	if err := cred.RotateTokens(accessEnc, refreshEnc, grant.ExpiresAt); err != nil {
		return nil, err
	}

	s.logger.Infow("refreshed provider access token",
		"user_id", cred.UserID,
		"provider", cred.Provider,
		"expires_at", grant.ExpiresAt)

	return &AccessTokenResult{
		AccessToken:   grant.AccessToken,
		Refreshed:     true,
		PrevExpiresAt: prevExpiresAt,
		Credential:    cred,
	}, nil
}

// ensureTokenWithWriteback combines the lifecycle decision with the
// conditional persistence step. When a refresh happened, the rotated
// pair is written back only if no concurrent caller rotated first;
// losing that write means the other caller's pair is the durable one,
// so the credential is re-read and its token used instead.
func ensureTokenWithWriteback(
	ctx context.Context,
	credRepo integration.Repository,
	tokens *TokenLifecycleService,
	metrics *observability.Metrics,
	cred *integration.Credential,
) (string, error) {
	result, err := tokens.EnsureValidAccessToken(ctx, cred)
	if err != nil {
		return "", err
	}

	if !result.Refreshed {
		return result.AccessToken, nil
	}

	metrics.TokenRefreshes.Inc()
	applied, err := credRepo.UpdateTokens(ctx, result.Credential, result.PrevExpiresAt)
	if err != nil {
		return "", err
	}
	if applied {
		return result.AccessToken, nil
	}

	fresh, err := credRepo.GetByUserID(ctx, cred.UserID, cred.Provider)
	if err != nil {
		return "", err
	}
	if fresh == nil || !fresh.Connected {
		return "", errors.NewNotConnectedError()
	}
	winner, err := tokens.EnsureValidAccessToken(ctx, fresh)
	if err != nil {
		return "", err
	}
	*cred = *fresh
	return winner.AccessToken, nil
}
