package repository

import (
	"context"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/database"
	"go.uber.org/zap"
)

// PartnerTokenRepository implements domain.PartnerTokenRepository using PostgreSQL
type PartnerTokenRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewPartnerTokenRepository creates a new PartnerTokenRepository
func NewPartnerTokenRepository(db *database.Postgres, logger *zap.Logger) domain.PartnerTokenRepository {
	return &PartnerTokenRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PartnerTokenRepository) Save(ctx context.Context, record *domain.PartnerTokenRecord) error {
	token, err := marshalJSON(record.Token)
	if err != nil {
		return domain.WrapInternal(err)
	}

	err = r.db.Exec(ctx, `
		INSERT INTO oauth_partner_tokens (token_id, token, authentication_id, user_name, client_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ((md5(token_id))) DO UPDATE SET
			token = EXCLUDED.token,
			authentication_id = EXCLUDED.authentication_id,
			user_name = EXCLUDED.user_name,
			client_id = EXCLUDED.client_id
	`, record.TokenKey, token, record.AuthenticationKey, nullable(record.UserName), record.ClientID)
	if err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *PartnerTokenRepository) FindByAuthenticationKey(ctx context.Context, authenticationKey string) ([]*domain.PartnerTokenRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT token_id, token, authentication_id, user_name, client_id
		FROM oauth_partner_tokens WHERE authentication_id = $1
		ORDER BY created_at DESC
	`, authenticationKey)
	if err != nil {
		r.logger.Error("failed to query partner tokens", zap.Error(err))
		return nil, domain.WrapInternal(err)
	}
	defer rows.Close()

	var records []*domain.PartnerTokenRecord
	for rows.Next() {
		record := &domain.PartnerTokenRecord{}
		var (
			token    []byte
			userName *string
		)
		if err := rows.Scan(&record.TokenKey, &token, &record.AuthenticationKey, &userName, &record.ClientID); err != nil {
			return nil, domain.WrapInternal(err)
		}
		record.UserName = deref(userName)
		record.Token = &domain.AccessToken{}
		if err := unmarshalJSON(token, record.Token); err != nil {
			return nil, domain.WrapInternal(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapInternal(err)
	}
	return records, nil
}

func (r *PartnerTokenRepository) DeleteByAuthenticationKey(ctx context.Context, authenticationKey string) (int, error) {
	tag, err := r.db.ExecRaw(ctx, "DELETE FROM oauth_partner_tokens WHERE authentication_id = $1", authenticationKey)
	if err != nil {
		r.logger.Error("failed to delete partner tokens", zap.Error(err))
		return 0, domain.WrapInternal(err)
	}
	return int(tag.RowsAffected()), nil
}
