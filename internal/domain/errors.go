package domain

import apperrors "github.com/manorfm/tokenstore/internal/domain/errors"

var (
	// ErrClientNotFound is returned when a client id is not registered
	ErrClientNotFound = apperrors.NewNotFoundError("client not found")

	// ErrClientAlreadyExists is returned when registering a client id that is already present
	ErrClientAlreadyExists = apperrors.NewAlreadyExistsError("client already exists")

	// ErrInvalidClient is returned when a client definition or secret is invalid
	ErrInvalidClient = apperrors.NewValidationError("invalid client")

	// ErrAuthorizationCodeNotFound is returned by repositories when a code is absent
	ErrAuthorizationCodeNotFound = apperrors.NewNotFoundError("authorization code not found")

	// ErrInvalidAuthorizationCode is returned when a code cannot be redeemed
	ErrInvalidAuthorizationCode = apperrors.NewValidationError("invalid authorization code")

	// ErrInvalidToken is returned when a token to store is missing or has no value
	ErrInvalidToken = apperrors.NewValidationError("invalid token")

	// ErrInvalidAuthentication is returned when a token is stored without an authentication
	ErrInvalidAuthentication = apperrors.NewValidationError("invalid authentication")

	// ErrTokenNotFound is returned by repositories when a token key is absent
	ErrTokenNotFound = apperrors.NewNotFoundError("token not found")

	// ErrPartnerNotFound is returned when a partner id is not registered
	ErrPartnerNotFound = apperrors.NewNotFoundError("partner not found")

	// ErrInvalidPartner is returned when a partner definition is invalid
	ErrInvalidPartner = apperrors.NewValidationError("invalid partner")

	// ErrDigestUnavailable is returned at startup when the key digest cannot be computed
	ErrDigestUnavailable = apperrors.NewConfigurationError("token key digest unavailable", nil)

	// ErrUnsupportedBackend is returned when the configured storage backend is unknown
	ErrUnsupportedBackend = apperrors.NewConfigurationError("unsupported storage backend", nil)

	// ErrInternal is returned when there is an internal storage error
	ErrInternal = apperrors.NewInternalError("internal storage error", nil)
)

// WrapInternal classifies a backend failure as ErrInternal while keeping the cause
func WrapInternal(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.NewInternalError(ErrInternal.Message, err)
}
