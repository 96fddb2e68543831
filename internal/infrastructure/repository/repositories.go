package repository

import (
	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/database"
	"go.uber.org/zap"
)

// NewRepositories wires every PostgreSQL repository over one connection pool
func NewRepositories(db *database.Postgres, logger *zap.Logger) *domain.Repositories {
	return &domain.Repositories{
		Clients:       NewClientRepository(db, logger),
		Codes:         NewAuthorizationCodeRepository(db, logger),
		AccessTokens:  NewAccessTokenRepository(db, logger),
		RefreshTokens: NewRefreshTokenRepository(db, logger),
		PartnerTokens: NewPartnerTokenRepository(db, logger),
		Partners:      NewPartnerRepository(db, logger),
	}
}
