package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/database"
	"go.uber.org/zap"
)

// AuthorizationCodeRepository implements domain.AuthorizationCodeRepository using PostgreSQL
type AuthorizationCodeRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewAuthorizationCodeRepository creates a new AuthorizationCodeRepository
func NewAuthorizationCodeRepository(db *database.Postgres, logger *zap.Logger) domain.AuthorizationCodeRepository {
	return &AuthorizationCodeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AuthorizationCodeRepository) Save(ctx context.Context, code *domain.AuthorizationCode) error {
	auth, err := marshalJSON(code.Authentication)
	if err != nil {
		return domain.WrapInternal(err)
	}

	err = r.db.Exec(ctx, `
		INSERT INTO oauth_codes (code, authentication)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET authentication = EXCLUDED.authentication, created_at = CURRENT_TIMESTAMP
	`, code.Code, auth)
	if err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

// Consume deletes the code and returns its authentication in a single statement,
// so concurrent redemptions of the same code see at most one success.
func (r *AuthorizationCodeRepository) Consume(ctx context.Context, code string) (*domain.Authentication, error) {
	var data []byte
	err := r.db.QueryRow(ctx, `
		DELETE FROM oauth_codes WHERE code = $1 RETURNING authentication
	`, code).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAuthorizationCodeNotFound
	}
	if err != nil {
		r.logger.Error("failed to consume authorization code", zap.Error(err))
		return nil, domain.WrapInternal(err)
	}

	auth := &domain.Authentication{}
	if err := unmarshalJSON(data, auth); err != nil {
		return nil, domain.WrapInternal(err)
	}
	return auth, nil
}
