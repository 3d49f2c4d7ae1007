package usecases

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stridesync/internal/domain/integration"
	"stridesync/internal/infrastructure/crypto"
	"stridesync/internal/infrastructure/strava"
	"stridesync/internal/shared/errors"
)

func testCipher(t *testing.T) crypto.TokenCipher {
	t.Helper()
	cipher, err := crypto.NewTokenCipher(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)
	return cipher
}

func TestHandleStravaCallback_ConnectsAccount(t *testing.T) {
	cipher := testCipher(t)
	credRepo := new(mockCredentialRepository)
	provider := new(mockProviderClient)
	uc := NewHandleStravaCallbackUseCase(credRepo, provider, cipher, testLogger())

	expiresAt := time.Now().Add(6 * time.Hour).Unix()
	provider.On("ExchangeCode", mock.Anything, "the-code").Return(&strava.TokenGrant{
		AccessToken:  "plain-access",
		RefreshToken: "plain-refresh",
		ExpiresAt:    expiresAt,
		AthleteID:    "9001",
	}, nil)

	var saved *integration.Credential
	credRepo.On("Save", mock.Anything, mock.MatchedBy(func(cred *integration.Credential) bool {
		saved = cred
		return cred.UserID == 42 && cred.Connected && cred.AthleteID == "9001" && cred.ExpiresAt == expiresAt
	})).Return(nil)

	result := uc.Execute(context.Background(), HandleStravaCallbackCommand{Code: "the-code", State: "42"})
	assert.True(t, result.Connected)
	assert.Equal(t, uint(42), result.UserID)

	// tokens are stored encrypted, and round-trip back to the grant
	require.NotNil(t, saved)
	access, err := cipher.Decrypt(saved.AccessTokenEnc)
	require.NoError(t, err)
	assert.Equal(t, "plain-access", access)
	refresh, err := cipher.Decrypt(saved.RefreshTokenEnc)
	require.NoError(t, err)
	assert.Equal(t, "plain-refresh", refresh)
	assert.NotEqual(t, "plain-access", saved.AccessTokenEnc)
}

func TestHandleStravaCallback_UserDeclined(t *testing.T) {
	credRepo := new(mockCredentialRepository)
	provider := new(mockProviderClient)
	uc := NewHandleStravaCallbackUseCase(credRepo, provider, testCipher(t), testLogger())

	result := uc.Execute(context.Background(), HandleStravaCallbackCommand{State: "42", ErrorParam: "access_denied"})
	assert.False(t, result.Connected)
	assert.Equal(t, ReasonAccessDenied, result.Reason)
	provider.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
}

func TestHandleStravaCallback_InvalidState(t *testing.T) {
	for _, state := range []string{"", "not-a-number", "0", "-5"} {
		t.Run("state "+state, func(t *testing.T) {
			credRepo := new(mockCredentialRepository)
			provider := new(mockProviderClient)
			uc := NewHandleStravaCallbackUseCase(credRepo, provider, testCipher(t), testLogger())

			result := uc.Execute(context.Background(), HandleStravaCallbackCommand{Code: "c", State: state})
			assert.Equal(t, ReasonInvalidState, result.Reason)
			provider.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleStravaCallback_ExchangeRejected(t *testing.T) {
	credRepo := new(mockCredentialRepository)
	provider := new(mockProviderClient)
	uc := NewHandleStravaCallbackUseCase(credRepo, provider, testCipher(t), testLogger())

	provider.On("ExchangeCode", mock.Anything, "used-code").
		Return(nil, errors.NewProviderAuthError("code exchange", "invalid code"))

	result := uc.Execute(context.Background(), HandleStravaCallbackCommand{Code: "used-code", State: "42"})
	assert.False(t, result.Connected)
	assert.Equal(t, ReasonExchangeFailed, result.Reason)
	credRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestHandleStravaCallback_StorageFailure(t *testing.T) {
	credRepo := new(mockCredentialRepository)
	provider := new(mockProviderClient)
	uc := NewHandleStravaCallbackUseCase(credRepo, provider, testCipher(t), testLogger())

	provider.On("ExchangeCode", mock.Anything, "the-code").Return(&strava.TokenGrant{
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
		AthleteID:    "9001",
	}, nil)
	credRepo.On("Save", mock.Anything, mock.Anything).Return(fmt.Errorf("connection lost"))

	result := uc.Execute(context.Background(), HandleStravaCallbackCommand{Code: "the-code", State: "42"})
	assert.Equal(t, ReasonStorageFailed, result.Reason)
}
