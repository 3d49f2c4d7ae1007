package usecases

import (
	"context"
	"strconv"

	"stridesync/internal/application/integration/services"
	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/crypto"
	"stridesync/internal/shared/logger"
)

// Machine-readable reason codes carried on the error redirect. The
// frontend maps these to copy; token material never appears in any
// redirect.
const (
	ReasonAccessDenied   = "access_denied"
	ReasonInvalidState   = "invalid_state"
	ReasonExchangeFailed = "exchange_failed"
	ReasonStorageFailed  = "storage_failed"
)

type HandleStravaCallbackCommand struct {
	Code string
	// State is the user id embedded at authorization time.
	State string
	// ErrorParam is the provider's error query parameter, set when the
	// user declined the authorization screen.
	ErrorParam string
}

type HandleStravaCallbackResult struct {
	// Connected is false when the grant was not completed; Reason then
	// carries the machine-readable cause.
	Connected bool
	Reason    string
	UserID    uint
}

// HandleStravaCallbackUseCase completes the OAuth authorization: it
// exchanges the single-use code, encrypts the token pair and stores the
// credential. Reconnecting replaces any previous credential for the
// user.
type HandleStravaCallbackUseCase struct {
	credRepo integration.Repository
	provider services.ProviderClient
	cipher   crypto.TokenCipher
	logger   logger.Interface
}

func NewHandleStravaCallbackUseCase(
	credRepo integration.Repository,
	provider services.ProviderClient,
	cipher crypto.TokenCipher,
	logger logger.Interface,
) *HandleStravaCallbackUseCase {
	return &HandleStravaCallbackUseCase{
		credRepo: credRepo,
		provider: provider,
		cipher:   cipher,
		logger:   logger,
	}
}

func (uc *HandleStravaCallbackUseCase) Execute(ctx context.Context, cmd HandleStravaCallbackCommand) *HandleStravaCallbackResult {
	if cmd.ErrorParam != "" {
		uc.logger.Infow("authorization declined by user", "error", cmd.ErrorParam)
		return &HandleStravaCallbackResult{Reason: ReasonAccessDenied}
	}

	userID, err := strconv.ParseUint(cmd.State, 10, 32)
	if err != nil || userID == 0 {
		uc.logger.Warnw("callback with unusable state", "state", cmd.State)
		return &HandleStravaCallbackResult{Reason: ReasonInvalidState}
	}

	grant, err := uc.provider.ExchangeCode(ctx, cmd.Code)
	if err != nil {
		uc.logger.Errorw("authorization code exchange failed", "user_id", userID, "error", err)
		return &HandleStravaCallbackResult{Reason: ReasonExchangeFailed, UserID: uint(userID)}
	}

	accessEnc, err := uc.cipher.Encrypt(grant.AccessToken)
	if err != nil {
		uc.logger.Errorw("failed to encrypt access token", "user_id", userID, "error", err)
		return &HandleStravaCallbackResult{Reason: ReasonStorageFailed, UserID: uint(userID)}
	}
	refreshEnc, err := uc.cipher.Encrypt(grant.RefreshToken)
	if err != nil {
		uc.logger.Errorw("failed to encrypt refresh token", "user_id", userID, "error", err)
		return &HandleStravaCallbackResult{Reason: ReasonStorageFailed, UserID: uint(userID)}
	}

	cred, err := integration.NewCredential(uint(userID), integration.ProviderStrava, grant.AthleteID, accessEnc, refreshEnc, grant.ExpiresAt)
	if err != nil {
		uc.logger.Errorw("failed to build credential", "user_id", userID, "error", err)
		return &HandleStravaCallbackResult{Reason: ReasonStorageFailed, UserID: uint(userID)}
	}

	if err := uc.credRepo.Save(ctx, cred); err != nil {
		uc.logger.Errorw("failed to store credential", "user_id", userID, "error", err)
		return &HandleStravaCallbackResult{Reason: ReasonStorageFailed, UserID: uint(userID)}
	}

	uc.logger.Infow("provider account connected",
		"user_id", userID,
		"athlete_id", grant.AthleteID)
	return &HandleStravaCallbackResult{Connected: true, UserID: uint(userID)}
}
