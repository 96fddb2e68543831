package domain

import "context"

// ClientRepository defines the backend contract for client definitions
type ClientRepository interface {
	// Create inserts a client, returning ErrClientAlreadyExists when the id is present
	Create(ctx context.Context, client *ClientDefinition) error

	// FindByID returns the client or ErrClientNotFound
	FindByID(ctx context.Context, clientID string) (*ClientDefinition, error)

	// Update replaces all fields except the id and secret, returning ErrClientNotFound when absent
	Update(ctx context.Context, client *ClientDefinition) error

	// UpdateSecret replaces the stored secret hash, returning ErrClientNotFound when absent
	UpdateSecret(ctx context.Context, clientID, secretHash string) error

	// Delete removes the client and reports whether it existed
	Delete(ctx context.Context, clientID string) (bool, error)

	// List scans all clients
	List(ctx context.Context) ([]*ClientDefinition, error)
}

// AuthorizationCodeRepository defines the backend contract for authorization codes
type AuthorizationCodeRepository interface {
	// Save upserts the code
	Save(ctx context.Context, code *AuthorizationCode) error

	// Consume deletes the code and returns its authentication in one step,
	// returning ErrAuthorizationCodeNotFound when absent
	Consume(ctx context.Context, code string) (*Authentication, error)
}

// AccessTokenRepository defines the backend contract for access token records
type AccessTokenRepository interface {
	// Save upserts the record by token key, replacing its index entries
	Save(ctx context.Context, record *AccessTokenRecord) error

	// FindByKey returns the record or ErrTokenNotFound
	FindByKey(ctx context.Context, tokenKey string) (*AccessTokenRecord, error)

	// FindByAuthenticationKey returns all records indexed under the authentication key
	FindByAuthenticationKey(ctx context.Context, authenticationKey string) ([]*AccessTokenRecord, error)

	// FindByClientID returns all records indexed under the client id
	FindByClientID(ctx context.Context, clientID string) ([]*AccessTokenRecord, error)

	// FindByClientIDAndUserName returns all records indexed under the client id and user name
	FindByClientIDAndUserName(ctx context.Context, clientID, userName string) ([]*AccessTokenRecord, error)

	// DeleteByKey removes the record; absent keys are not an error
	DeleteByKey(ctx context.Context, tokenKey string) error

	// DeleteByRefreshTokenKey removes every record linked to the refresh token key
	// and returns how many were removed
	DeleteByRefreshTokenKey(ctx context.Context, refreshTokenKey string) (int, error)
}

// RefreshTokenRepository defines the backend contract for refresh token records
type RefreshTokenRepository interface {
	// Save upserts the record by token key
	Save(ctx context.Context, record *RefreshTokenRecord) error

	// FindByKey returns the record or ErrTokenNotFound
	FindByKey(ctx context.Context, tokenKey string) (*RefreshTokenRecord, error)

	// DeleteByKey removes the record; absent keys are not an error
	DeleteByKey(ctx context.Context, tokenKey string) error
}

// PartnerTokenRepository defines the backend contract for partner token records
type PartnerTokenRepository interface {
	// Save upserts the record by raw token value
	Save(ctx context.Context, record *PartnerTokenRecord) error

	// FindByAuthenticationKey returns all records indexed under the authentication key
	FindByAuthenticationKey(ctx context.Context, authenticationKey string) ([]*PartnerTokenRecord, error)

	// DeleteByAuthenticationKey removes every record indexed under the authentication key
	// and returns how many were removed
	DeleteByAuthenticationKey(ctx context.Context, authenticationKey string) (int, error)
}

// PartnerRepository defines the backend contract for partner definitions
type PartnerRepository interface {
	// Save upserts the partner
	Save(ctx context.Context, partner *Partner) error

	// FindByID returns the partner or ErrPartnerNotFound
	FindByID(ctx context.Context, partnerID string) (*Partner, error)

	// Delete removes the partner; absent ids are not an error
	Delete(ctx context.Context, partnerID string) error

	// List scans all partners
	List(ctx context.Context) ([]*Partner, error)
}

// Repositories bundles one backend's implementation of every repository contract
type Repositories struct {
	Clients       ClientRepository
	Codes         AuthorizationCodeRepository
	AccessTokens  AccessTokenRepository
	RefreshTokens RefreshTokenRepository
	PartnerTokens PartnerTokenRepository
	Partners      PartnerRepository
}
