package usecases

import (
	"context"

	"stridesync/internal/application/integration/services"
	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/crypto"
	"stridesync/internal/shared/errors"
	"stridesync/internal/shared/logger"
)

// DisconnectStravaUseCase revokes the provider grant best-effort and
// always clears the local credential. A failed or impossible revocation
// (provider down, undecryptable token) never blocks the local
// disconnect.
type DisconnectStravaUseCase struct {
	credRepo integration.Repository
	provider services.ProviderClient
	cipher   crypto.TokenCipher
	logger   logger.Interface
}

func NewDisconnectStravaUseCase(
	credRepo integration.Repository,
	provider services.ProviderClient,
	cipher crypto.TokenCipher,
	logger logger.Interface,
) *DisconnectStravaUseCase {
	return &DisconnectStravaUseCase{
		credRepo: credRepo,
		provider: provider,
		cipher:   cipher,
		logger:   logger,
	}
}

func (uc *DisconnectStravaUseCase) Execute(ctx context.Context, userID uint) error {
	cred, err := uc.credRepo.GetByUserID(ctx, userID, integration.ProviderStrava)
	if err != nil {
		return err
	}
	if cred == nil || !cred.Connected {
		return errors.NewNotConnectedError()
	}

	if accessToken, err := uc.cipher.Decrypt(cred.AccessTokenEnc); err != nil {
		uc.logger.Warnw("skipping provider revocation, token undecryptable", "user_id", userID, "error", err)
	} else if err := uc.provider.Deauthorize(ctx, accessToken); err != nil {
		uc.logger.Warnw("provider revocation failed, disconnecting locally anyway", "user_id", userID, "error", err)
	}

	if err := uc.credRepo.Disconnect(ctx, userID, integration.ProviderStrava); err != nil {
		return err
	}

	uc.logger.Infow("provider account disconnected", "user_id", userID)
	return nil
}
