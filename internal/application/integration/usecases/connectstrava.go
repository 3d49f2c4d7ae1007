// Package usecases holds the user-facing operations of the provider
// integration: connect, callback, disconnect, status and manual sync.
package usecases

import (
	"strconv"

	"stridesync/internal/application/integration/services"
	"stridesync/internal/shared/logger"
)

type ConnectStravaResult struct {
	AuthorizeURL string
}

// ConnectStravaUseCase builds the provider authorization URL for a user.
// The user id rides along as the OAuth state so the callback can
// correlate the grant without a server-side session.
type ConnectStravaUseCase struct {
	provider services.ProviderClient
	logger   logger.Interface
}

func NewConnectStravaUseCase(provider services.ProviderClient, logger logger.Interface) *ConnectStravaUseCase {
	return &ConnectStravaUseCase{
		provider: provider,
		logger:   logger,
	}
}

func (uc *ConnectStravaUseCase) Execute(userID uint) *ConnectStravaResult {
	state := strconv.FormatUint(uint64(userID), 10)
	return &ConnectStravaResult{
		AuthorizeURL: uc.provider.AuthorizationURL(state),
	}
}
