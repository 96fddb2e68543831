package domain

import "context"

// ClientRegistry manages registered client definitions
type ClientRegistry interface {
	// LoadClientByID returns the client definition, or ErrClientNotFound
	LoadClientByID(ctx context.Context, clientID string) (*ClientDefinition, error)

	// AddClient registers a new client, failing with ErrClientAlreadyExists when the id is taken
	AddClient(ctx context.Context, client *ClientDefinition) error

	// UpdateClient replaces the mutable fields of an existing client
	UpdateClient(ctx context.Context, client *ClientDefinition) error

	// UpdateClientSecret stores the one-way hash of a new secret
	UpdateClientSecret(ctx context.Context, clientID, secret string) error

	// RemoveClient deletes a client; removing an absent client is a no-op
	RemoveClient(ctx context.Context, clientID string) error

	// ListClients returns every registered client in no particular order
	ListClients(ctx context.Context) ([]*ClientDefinition, error)
}

// AuthorizationCodeStore persists single-use authorization codes
type AuthorizationCodeStore interface {
	// StoreCode binds code to the authentication, overwriting any previous binding
	StoreCode(ctx context.Context, code string, auth *Authentication) error

	// RemoveCode consumes the code, returning nil when it is absent
	RemoveCode(ctx context.Context, code string) (*Authentication, error)
}

// AccessTokenStore persists access tokens keyed by derived token keys
type AccessTokenStore interface {
	// GetAccessToken returns a token previously issued for an equivalent authentication, or nil
	GetAccessToken(ctx context.Context, auth *Authentication) (*AccessToken, error)

	// StoreAccessToken upserts the token together with the authentication that produced it
	StoreAccessToken(ctx context.Context, token *AccessToken, auth *Authentication) error

	// ReadAccessToken returns the token for a raw value, or nil
	ReadAccessToken(ctx context.Context, tokenValue string) (*AccessToken, error)

	// ReadAuthentication returns the authentication for a raw access token value, or nil
	ReadAuthentication(ctx context.Context, tokenValue string) (*Authentication, error)

	// RemoveAccessToken deletes the token for a raw value; absent tokens are a no-op
	RemoveAccessToken(ctx context.Context, tokenValue string) error

	// RemoveAccessTokenUsingRefreshToken deletes every access token linked to the raw refresh value
	RemoveAccessTokenUsingRefreshToken(ctx context.Context, refreshTokenValue string) error

	// FindTokensByClientID returns every access token indexed under the client
	FindTokensByClientID(ctx context.Context, clientID string) ([]*AccessToken, error)

	// FindTokensByClientIDAndUserName returns every access token indexed under the client and user
	FindTokensByClientIDAndUserName(ctx context.Context, clientID, userName string) ([]*AccessToken, error)
}

// RefreshTokenStore persists refresh tokens keyed by derived token keys
type RefreshTokenStore interface {
	// StoreRefreshToken upserts the refresh token together with its authentication
	StoreRefreshToken(ctx context.Context, token *RefreshToken, auth *Authentication) error

	// ReadRefreshToken returns the refresh token for a raw value, or nil
	ReadRefreshToken(ctx context.Context, tokenValue string) (*RefreshToken, error)

	// ReadAuthenticationForRefreshToken returns the authentication for a raw refresh value, or nil
	ReadAuthenticationForRefreshToken(ctx context.Context, tokenValue string) (*Authentication, error)

	// RemoveRefreshToken deletes the refresh token; linked access tokens are left untouched
	RemoveRefreshToken(ctx context.Context, tokenValue string) error
}

// PartnerTokenStore persists tokens the server holds for upstream partner resources
type PartnerTokenStore interface {
	// GetAccessToken returns a token held for the resource and authentication, or nil
	GetAccessToken(ctx context.Context, resource *ProtectedResource, auth *Authentication) (*AccessToken, error)

	// SaveAccessToken upserts a partner token keyed by its raw value
	SaveAccessToken(ctx context.Context, resource *ProtectedResource, auth *Authentication, token *AccessToken) error

	// RemoveAccessToken deletes every token held for the resource and authentication
	RemoveAccessToken(ctx context.Context, resource *ProtectedResource, auth *Authentication) error
}

// PartnerRegistry manages upstream partner definitions
type PartnerRegistry interface {
	// LoadPartner returns the partner, or ErrPartnerNotFound
	LoadPartner(ctx context.Context, partnerID string) (*Partner, error)

	// ListPartners returns every registered partner in no particular order
	ListPartners(ctx context.Context) ([]*Partner, error)

	// SavePartner upserts a partner definition
	SavePartner(ctx context.Context, partner *Partner) error

	// DeletePartner removes a partner; removing an absent partner is a no-op
	DeletePartner(ctx context.Context, partnerID string) error
}

// SecretEncoder hashes client secrets one way
type SecretEncoder interface {
	// Encode returns a salted one-way hash of secret
	Encode(secret string) (string, error)

	// Matches reports whether secret hashes to encoded
	Matches(secret, encoded string) bool
}
