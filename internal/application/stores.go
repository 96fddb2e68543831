package application

import (
	"github.com/manorfm/tokenstore/internal/domain"
	"go.uber.org/zap"
)

// Stores bundles every store implementation built over one backend
type Stores struct {
	Clients       *ClientService
	Codes         *AuthorizationCodeService
	AccessTokens  *AccessTokenService
	RefreshTokens *RefreshTokenService
	PartnerTokens *PartnerTokenService
	Partners      *PartnerService
}

var (
	_ domain.ClientRegistry         = (*ClientService)(nil)
	_ domain.AuthorizationCodeStore = (*AuthorizationCodeService)(nil)
	_ domain.AccessTokenStore       = (*AccessTokenService)(nil)
	_ domain.RefreshTokenStore      = (*RefreshTokenService)(nil)
	_ domain.PartnerTokenStore      = (*PartnerTokenService)(nil)
	_ domain.PartnerRegistry        = (*PartnerService)(nil)
)

// NewStores wires the stores over repos
func NewStores(repos *domain.Repositories, encoder domain.SecretEncoder, logger *zap.Logger) *Stores {
	return &Stores{
		Clients:       NewClientService(repos.Clients, encoder, logger),
		Codes:         NewAuthorizationCodeService(repos.Codes, logger),
		AccessTokens:  NewAccessTokenService(repos.AccessTokens, logger),
		RefreshTokens: NewRefreshTokenService(repos.RefreshTokens, logger),
		PartnerTokens: NewPartnerTokenService(repos.PartnerTokens, logger),
		Partners:      NewPartnerService(repos.Partners, logger),
	}
}
