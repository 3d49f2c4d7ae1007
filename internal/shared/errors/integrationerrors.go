package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Provider-integration error types
const (
	ErrorTypeNotConnected      ErrorType = "not_connected"
	ErrorTypeProviderAuth      ErrorType = "provider_auth_error"
	ErrorTypeProviderRateLimit ErrorType = "provider_rate_limit"
	ErrorTypeDecryption        ErrorType = "decryption_error"
	ErrorTypeImportConflict    ErrorType = "import_conflict"
)

// IntegrationError represents errors from the provider sync subsystem.
// Terminal errors require the user to reconnect; transient ones are left
// for the next reconciliation pass.
type IntegrationError struct {
	*AppError
	// Terminal indicates the stored grant is unusable and the credential
	// should be flipped to disconnected.
	Terminal bool
	// Transient indicates the operation may succeed if retried later.
	Transient bool
}

// Error implements the error interface
func (e *IntegrationError) Error() string {
	return e.AppError.Error()
}

// Unwrap allows errors.Is and errors.As to work correctly
func (e *IntegrationError) Unwrap() error {
	return e.AppError
}

// NewNotConnectedError creates an error for users without a linked provider account.
func NewNotConnectedError(details ...string) *IntegrationError {
	detail := "No connected provider account"
	if len(details) > 0 {
		detail = details[0]
	}
	return &IntegrationError{
		AppError: &AppError{
			Type:    ErrorTypeNotConnected,
			Message: "Provider account is not connected",
			Code:    http.StatusConflict,
			Details: detail,
		},
	}
}

// NewProviderAuthError creates an error for a rejected, expired or revoked
// grant. This is terminal: the user must go through authorization again.
func NewProviderAuthError(stage string, details ...string) *IntegrationError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &IntegrationError{
		AppError: &AppError{
			Type:    ErrorTypeProviderAuth,
			Message: fmt.Sprintf("Provider rejected credentials during %s", stage),
			Code:    http.StatusBadGateway,
			Details: detail,
		},
		Terminal: true,
	}
}

// NewProviderRateLimitError creates an error for a throttled provider call.
// Transient: the reconciliation sweep retries on its next pass.
func NewProviderRateLimitError(details ...string) *IntegrationError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &IntegrationError{
		AppError: &AppError{
			Type:    ErrorTypeProviderRateLimit,
			Message: "Provider rate limit exceeded",
			Code:    http.StatusServiceUnavailable,
			Details: detail,
		},
		Transient: true,
	}
}

// NewDecryptionError creates an error for undecryptable stored tokens.
// Kept distinct from not_connected so operators can tell credential
// corruption apart from a normal disconnect.
func NewDecryptionError(details ...string) *IntegrationError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &IntegrationError{
		AppError: &AppError{
			Type:    ErrorTypeDecryption,
			Message: "Stored credential could not be decrypted",
			Code:    http.StatusInternalServerError,
			Details: detail,
		},
	}
}

// NewImportConflictError creates an error for a duplicate activity insert
// that slipped past the dedup check.
func NewImportConflictError(externalID string) *IntegrationError {
	return &IntegrationError{
		AppError: &AppError{
			Type:    ErrorTypeImportConflict,
			Message: "Activity is already imported",
			Code:    http.StatusConflict,
			Details: fmt.Sprintf("external activity %s", externalID),
		},
	}
}

// GetIntegrationError extracts IntegrationError from the error chain.
func GetIntegrationError(err error) *IntegrationError {
	var intErr *IntegrationError
	if stderrors.As(err, &intErr) {
		return intErr
	}
	return nil
}

// IsNotConnectedError reports whether the error is the not-connected condition.
func IsNotConnectedError(err error) bool {
	intErr := GetIntegrationError(err)
	return intErr != nil && intErr.Type == ErrorTypeNotConnected
}

// IsProviderAuthError reports whether the error is a terminal grant failure.
func IsProviderAuthError(err error) bool {
	intErr := GetIntegrationError(err)
	return intErr != nil && intErr.Type == ErrorTypeProviderAuth
}

// IsProviderRateLimitError reports whether the provider throttled the call.
func IsProviderRateLimitError(err error) bool {
	intErr := GetIntegrationError(err)
	return intErr != nil && intErr.Type == ErrorTypeProviderRateLimit
}

// IsDecryptionError reports whether stored ciphertext failed to decrypt.
func IsDecryptionError(err error) bool {
	intErr := GetIntegrationError(err)
	return intErr != nil && intErr.Type == ErrorTypeDecryption
}

// IsTerminal reports whether the credential should be disconnected.
func IsTerminal(err error) bool {
	intErr := GetIntegrationError(err)
	return intErr != nil && intErr.Terminal
}

// IsTransient reports whether the operation is worth retrying on a later pass.
func IsTransient(err error) bool {
	intErr := GetIntegrationError(err)
	return intErr != nil && intErr.Transient
}
