package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/database"
	"go.uber.org/zap"
)

const accessTokenColumns = `token_id, token, authentication_id, authentication, client_id, user_name, refresh_token`

// AccessTokenRepository implements domain.AccessTokenRepository using PostgreSQL
type AccessTokenRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewAccessTokenRepository creates a new AccessTokenRepository
func NewAccessTokenRepository(db *database.Postgres, logger *zap.Logger) domain.AccessTokenRepository {
	return &AccessTokenRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AccessTokenRepository) Save(ctx context.Context, record *domain.AccessTokenRecord) error {
	token, err := marshalJSON(record.Token)
	if err != nil {
		return domain.WrapInternal(err)
	}
	auth, err := marshalJSON(record.Authentication)
	if err != nil {
		return domain.WrapInternal(err)
	}

	err = r.db.Exec(ctx, `
		INSERT INTO oauth_access_tokens (`+accessTokenColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (token_id) DO UPDATE SET
			token = EXCLUDED.token,
			authentication_id = EXCLUDED.authentication_id,
			authentication = EXCLUDED.authentication,
			client_id = EXCLUDED.client_id,
			user_name = EXCLUDED.user_name,
			refresh_token = EXCLUDED.refresh_token
	`, record.TokenKey, token, record.AuthenticationKey, auth, record.ClientID, record.UserName,
		nullable(record.RefreshTokenKey))
	if err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *AccessTokenRepository) FindByKey(ctx context.Context, tokenKey string) (*domain.AccessTokenRecord, error) {
	record, err := scanAccessToken(r.db.QueryRow(ctx, `
		SELECT `+accessTokenColumns+` FROM oauth_access_tokens WHERE token_id = $1
	`, tokenKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		r.logger.Error("failed to find access token", zap.String("token_id", tokenKey), zap.Error(err))
		return nil, domain.WrapInternal(err)
	}
	return record, nil
}

func (r *AccessTokenRepository) FindByAuthenticationKey(ctx context.Context, authenticationKey string) ([]*domain.AccessTokenRecord, error) {
	return r.list(ctx, `
		SELECT `+accessTokenColumns+` FROM oauth_access_tokens WHERE authentication_id = $1
	`, authenticationKey)
}

func (r *AccessTokenRepository) FindByClientID(ctx context.Context, clientID string) ([]*domain.AccessTokenRecord, error) {
	return r.list(ctx, `
		SELECT `+accessTokenColumns+` FROM oauth_access_tokens WHERE client_id = $1
	`, clientID)
}

func (r *AccessTokenRepository) FindByClientIDAndUserName(ctx context.Context, clientID, userName string) ([]*domain.AccessTokenRecord, error) {
	return r.list(ctx, `
		SELECT `+accessTokenColumns+` FROM oauth_access_tokens WHERE client_id = $1 AND user_name = $2
	`, clientID, userName)
}

func (r *AccessTokenRepository) DeleteByKey(ctx context.Context, tokenKey string) error {
	if err := r.db.Exec(ctx, "DELETE FROM oauth_access_tokens WHERE token_id = $1", tokenKey); err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *AccessTokenRepository) DeleteByRefreshTokenKey(ctx context.Context, refreshTokenKey string) (int, error) {
	tag, err := r.db.ExecRaw(ctx, "DELETE FROM oauth_access_tokens WHERE refresh_token = $1", refreshTokenKey)
	if err != nil {
		r.logger.Error("failed to delete access tokens by refresh token", zap.Error(err))
		return 0, domain.WrapInternal(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *AccessTokenRepository) list(ctx context.Context, sql string, args ...interface{}) ([]*domain.AccessTokenRecord, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error("failed to query access tokens", zap.Error(err))
		return nil, domain.WrapInternal(err)
	}
	defer rows.Close()

	var records []*domain.AccessTokenRecord
	for rows.Next() {
		record, err := scanAccessToken(rows)
		if err != nil {
			return nil, domain.WrapInternal(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapInternal(err)
	}
	return records, nil
}

func scanAccessToken(row pgx.Row) (*domain.AccessTokenRecord, error) {
	record := &domain.AccessTokenRecord{}
	var (
		token, auth  []byte
		refreshToken *string
	)

	err := row.Scan(&record.TokenKey, &token, &record.AuthenticationKey, &auth,
		&record.ClientID, &record.UserName, &refreshToken)
	if err != nil {
		return nil, err
	}
	record.RefreshTokenKey = deref(refreshToken)

	record.Token = &domain.AccessToken{}
	if err := unmarshalJSON(token, record.Token); err != nil {
		return nil, err
	}
	record.Authentication = &domain.Authentication{}
	if err := unmarshalJSON(auth, record.Authentication); err != nil {
		return nil, err
	}
	return record, nil
}
