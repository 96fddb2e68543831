package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/database"
	"go.uber.org/zap"
)

const partnerColumns = `partner_id, client_id, client_secret, access_token_uri, user_authorization_uri,
	pre_established_redirect_uri, scopes, created_at, updated_at`

// PartnerRepository implements domain.PartnerRepository using PostgreSQL
type PartnerRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewPartnerRepository creates a new PartnerRepository
func NewPartnerRepository(db *database.Postgres, logger *zap.Logger) domain.PartnerRepository {
	return &PartnerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PartnerRepository) Save(ctx context.Context, partner *domain.Partner) error {
	scopes, err := marshalJSON(partner.Scopes)
	if err != nil {
		return domain.WrapInternal(err)
	}

	now := time.Now()
	if partner.CreatedAt.IsZero() {
		partner.CreatedAt = now
	}
	partner.UpdatedAt = now

	err = r.db.Exec(ctx, `
		INSERT INTO oauth_partners (`+partnerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (partner_id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			access_token_uri = EXCLUDED.access_token_uri,
			user_authorization_uri = EXCLUDED.user_authorization_uri,
			pre_established_redirect_uri = EXCLUDED.pre_established_redirect_uri,
			scopes = EXCLUDED.scopes,
			updated_at = EXCLUDED.updated_at
	`, partner.PartnerID, partner.ClientID, nullable(partner.ClientSecret), partner.AccessTokenURI,
		nullable(partner.UserAuthorizationURI), nullable(partner.PreEstablishedURI), scopes,
		partner.CreatedAt, partner.UpdatedAt)
	if err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *PartnerRepository) FindByID(ctx context.Context, partnerID string) (*domain.Partner, error) {
	partner, err := scanPartner(r.db.QueryRow(ctx, `
		SELECT `+partnerColumns+` FROM oauth_partners WHERE partner_id = $1
	`, partnerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPartnerNotFound
	}
	if err != nil {
		r.logger.Error("failed to find partner", zap.String("partner_id", partnerID), zap.Error(err))
		return nil, domain.WrapInternal(err)
	}
	return partner, nil
}

func (r *PartnerRepository) Delete(ctx context.Context, partnerID string) error {
	if err := r.db.Exec(ctx, "DELETE FROM oauth_partners WHERE partner_id = $1", partnerID); err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *PartnerRepository) List(ctx context.Context) ([]*domain.Partner, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+partnerColumns+` FROM oauth_partners ORDER BY created_at DESC
	`)
	if err != nil {
		r.logger.Error("failed to list partners", zap.Error(err))
		return nil, domain.WrapInternal(err)
	}
	defer rows.Close()

	var partners []*domain.Partner
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return nil, domain.WrapInternal(err)
		}
		partners = append(partners, partner)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapInternal(err)
	}
	return partners, nil
}

func scanPartner(row pgx.Row) (*domain.Partner, error) {
	partner := &domain.Partner{}
	var (
		secret, authURI, redirectURI *string
		scopes                       []byte
	)

	err := row.Scan(&partner.PartnerID, &partner.ClientID, &secret, &partner.AccessTokenURI,
		&authURI, &redirectURI, &scopes, &partner.CreatedAt, &partner.UpdatedAt)
	if err != nil {
		return nil, err
	}
	partner.ClientSecret = deref(secret)
	partner.UserAuthorizationURI = deref(authURI)
	partner.PreEstablishedURI = deref(redirectURI)

	if err := unmarshalJSON(scopes, &partner.Scopes); err != nil {
		return nil, err
	}
	return partner, nil
}
