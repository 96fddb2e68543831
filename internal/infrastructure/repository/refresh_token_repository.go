package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/database"
	"go.uber.org/zap"
)

// RefreshTokenRepository implements domain.RefreshTokenRepository using PostgreSQL
type RefreshTokenRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository
func NewRefreshTokenRepository(db *database.Postgres, logger *zap.Logger) domain.RefreshTokenRepository {
	return &RefreshTokenRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RefreshTokenRepository) Save(ctx context.Context, record *domain.RefreshTokenRecord) error {
	token, err := marshalJSON(record.Token)
	if err != nil {
		return domain.WrapInternal(err)
	}
	auth, err := marshalJSON(record.Authentication)
	if err != nil {
		return domain.WrapInternal(err)
	}

	err = r.db.Exec(ctx, `
		INSERT INTO oauth_refresh_tokens (token_id, token, authentication)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_id) DO UPDATE SET token = EXCLUDED.token, authentication = EXCLUDED.authentication
	`, record.TokenKey, token, auth)
	if err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindByKey(ctx context.Context, tokenKey string) (*domain.RefreshTokenRecord, error) {
	record := &domain.RefreshTokenRecord{}
	var token, auth []byte

	err := r.db.QueryRow(ctx, `
		SELECT token_id, token, authentication FROM oauth_refresh_tokens WHERE token_id = $1
	`, tokenKey).Scan(&record.TokenKey, &token, &auth)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		r.logger.Error("failed to find refresh token", zap.String("token_id", tokenKey), zap.Error(err))
		return nil, domain.WrapInternal(err)
	}

	record.Token = &domain.RefreshToken{}
	if err := unmarshalJSON(token, record.Token); err != nil {
		return nil, domain.WrapInternal(err)
	}
	record.Authentication = &domain.Authentication{}
	if err := unmarshalJSON(auth, record.Authentication); err != nil {
		return nil, domain.WrapInternal(err)
	}
	return record, nil
}

func (r *RefreshTokenRepository) DeleteByKey(ctx context.Context, tokenKey string) error {
	if err := r.db.Exec(ctx, "DELETE FROM oauth_refresh_tokens WHERE token_id = $1", tokenKey); err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}
