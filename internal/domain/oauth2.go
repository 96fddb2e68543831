package domain

import (
	"slices"
	"time"
)

// NoUserName is stored in the user name index for tokens issued without a resource owner
const NoUserName = "#"

// autoApproveAll in a client's auto-approve list exempts every scope from consent
const autoApproveAll = "true"

// ClientDefinition represents a registered OAuth2 client
type ClientDefinition struct {
	ClientID             string   `json:"client_id"`
	ClientSecret         string   `json:"client_secret,omitempty"`
	Authorities          []string `json:"authorities"`
	AuthorizedGrantTypes []string `json:"authorized_grant_types"`
	Scopes               []string `json:"scopes"`
	// RedirectURIs is ordered; the first entry is the default redirect.
	RedirectURIs []string `json:"redirect_uris"`
	// Nil validity means the server default applies.
	AccessTokenValiditySeconds  *int      `json:"access_token_validity_seconds,omitempty"`
	RefreshTokenValiditySeconds *int      `json:"refresh_token_validity_seconds,omitempty"`
	AutoApproveScopes           []string  `json:"auto_approve_scopes"`
	CreatedAt                   time.Time `json:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at"`
}

// IsAutoApprove reports whether scope is exempt from interactive consent
func (c *ClientDefinition) IsAutoApprove(scope string) bool {
	for _, s := range c.AutoApproveScopes {
		if s == autoApproveAll || s == scope {
			return true
		}
	}
	return false
}

// DefaultRedirectURI returns the first registered redirect URI, or "" when none is registered
func (c *ClientDefinition) DefaultRedirectURI() string {
	if len(c.RedirectURIs) == 0 {
		return ""
	}
	return c.RedirectURIs[0]
}

// AccessTokenTTL returns the client's access token validity, or fallback when unset
func (c *ClientDefinition) AccessTokenTTL(fallback time.Duration) time.Duration {
	return validity(c.AccessTokenValiditySeconds, fallback)
}

// RefreshTokenTTL returns the client's refresh token validity, or fallback when unset
func (c *ClientDefinition) RefreshTokenTTL(fallback time.Duration) time.Duration {
	return validity(c.RefreshTokenValiditySeconds, fallback)
}

func validity(seconds *int, fallback time.Duration) time.Duration {
	if seconds == nil || *seconds <= 0 {
		return fallback
	}
	return time.Duration(*seconds) * time.Second
}

// OAuth2Request is the client side of an authentication context
type OAuth2Request struct {
	ClientID          string            `json:"client_id"`
	Scope             []string          `json:"scope,omitempty"`
	RequestParameters map[string]string `json:"request_parameters,omitempty"`
	ResourceIDs       []string          `json:"resource_ids,omitempty"`
	Authorities       []string          `json:"authorities,omitempty"`
	Approved          bool              `json:"approved"`
	RedirectURI       string            `json:"redirect_uri,omitempty"`
	ResponseTypes     []string          `json:"response_types,omitempty"`
	GrantType         string            `json:"grant_type,omitempty"`
	Extensions        map[string]string `json:"extensions,omitempty"`
}

// UserAuthentication is the resource owner side of an authentication context
type UserAuthentication struct {
	Name          string            `json:"name"`
	Authorities   []string          `json:"authorities,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	Authenticated bool              `json:"authenticated"`
}

// Authentication is the snapshot of resource owner, client and requested scope taken at issuance time
type Authentication struct {
	Request OAuth2Request       `json:"oauth2_request"`
	User    *UserAuthentication `json:"user_authentication,omitempty"`
}

// IsClientOnly reports whether the authentication carries no resource owner
func (a *Authentication) IsClientOnly() bool {
	return a.User == nil
}

// Name returns the resource owner name, or "" for client-only authentications
func (a *Authentication) Name() string {
	if a == nil || a.User == nil {
		return ""
	}
	return a.User.Name
}

// RefreshToken represents a refresh token as issued to a client
type RefreshToken struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the token carries an expiry that is before now
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// AccessToken represents an access token as issued to a client
type AccessToken struct {
	Value                 string            `json:"value"`
	TokenType             string            `json:"token_type"`
	ExpiresAt             time.Time         `json:"expires_at"`
	Scope                 []string          `json:"scope,omitempty"`
	RefreshToken          *RefreshToken     `json:"refresh_token,omitempty"`
	AdditionalInformation map[string]string `json:"additional_information,omitempty"`
}

// IsExpired reports whether the token carries an expiry that is before now
func (t *AccessToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// RefreshTokenValue returns the raw value of the linked refresh token, or "" when none is linked
func (t *AccessToken) RefreshTokenValue() string {
	if t.RefreshToken == nil {
		return ""
	}
	return t.RefreshToken.Value
}

// AuthorizationCode binds an issued code to the authentication that requested it
type AuthorizationCode struct {
	Code           string          `json:"code"`
	Authentication *Authentication `json:"authentication"`
}

// AccessTokenRecord is the persisted form of an access token.
// ClientID and UserName are written together with Token on every store call and are
// authoritative for indexing.
type AccessTokenRecord struct {
	TokenKey          string          `json:"token_id"`
	Token             *AccessToken    `json:"token"`
	AuthenticationKey string          `json:"authentication_id"`
	Authentication    *Authentication `json:"authentication"`
	ClientID          string          `json:"client_id"`
	UserName          string          `json:"user_name"`
	RefreshTokenKey   string          `json:"refresh_token,omitempty"`
}

// RefreshTokenRecord is the persisted form of a refresh token
type RefreshTokenRecord struct {
	TokenKey       string          `json:"token_id"`
	Token          *RefreshToken   `json:"token"`
	Authentication *Authentication `json:"authentication"`
}

// ProtectedResource identifies an upstream partner resource the server calls as an OAuth2 client
type ProtectedResource struct {
	ID       string   `json:"id"`
	ClientID string   `json:"client_id"`
	Scopes   []string `json:"scopes,omitempty"`
}

// PartnerTokenRecord is the persisted form of a token obtained from a partner.
// TokenKey is the raw partner token value.
type PartnerTokenRecord struct {
	TokenKey          string       `json:"token_id"`
	Token             *AccessToken `json:"token"`
	AuthenticationKey string       `json:"authentication_id"`
	UserName          string       `json:"user_name,omitempty"`
	ClientID          string       `json:"client_id"`
}

// Partner is an upstream service the server holds client credentials for
type Partner struct {
	PartnerID            string    `json:"partner_id"`
	ClientID             string    `json:"client_id"`
	ClientSecret         string    `json:"client_secret,omitempty"`
	AccessTokenURI       string    `json:"access_token_uri"`
	UserAuthorizationURI string    `json:"user_authorization_uri,omitempty"`
	PreEstablishedURI    string    `json:"pre_established_redirect_uri,omitempty"`
	Scopes               []string  `json:"scopes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Resource returns the protected resource description used to key partner tokens
func (p *Partner) Resource() *ProtectedResource {
	return &ProtectedResource{
		ID:       p.PartnerID,
		ClientID: p.ClientID,
		Scopes:   slices.Clone(p.Scopes),
	}
}
