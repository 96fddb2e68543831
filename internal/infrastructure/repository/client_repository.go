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

const clientColumns = `client_id, client_secret, authorities, authorized_grant_types, scopes, redirect_uris,
	access_token_validity_seconds, refresh_token_validity_seconds, auto_approve_scopes, created_at, updated_at`

// ClientRepository implements domain.ClientRepository using PostgreSQL
type ClientRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *database.Postgres, logger *zap.Logger) domain.ClientRepository {
	return &ClientRepository{
		db:     db,
		logger: logger,
	}
}

type clientLists struct {
	authorities, grantTypes, scopes, redirectURIs, autoApprove []byte
}

func encodeClientLists(client *domain.ClientDefinition) (*clientLists, error) {
	var (
		l   clientLists
		err error
	)
	if l.authorities, err = marshalJSON(client.Authorities); err != nil {
		return nil, err
	}
	if l.grantTypes, err = marshalJSON(client.AuthorizedGrantTypes); err != nil {
		return nil, err
	}
	if l.scopes, err = marshalJSON(client.Scopes); err != nil {
		return nil, err
	}
	if l.redirectURIs, err = marshalJSON(client.RedirectURIs); err != nil {
		return nil, err
	}
	if l.autoApprove, err = marshalJSON(client.AutoApproveScopes); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.ClientDefinition) error {
	lists, err := encodeClientLists(client)
	if err != nil {
		return domain.WrapInternal(err)
	}

	now := time.Now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = now
	}

	tag, err := r.db.ExecRaw(ctx, `
		INSERT INTO oauth_client_details (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (client_id) DO NOTHING
	`, client.ClientID, nullable(client.ClientSecret), lists.authorities, lists.grantTypes, lists.scopes,
		lists.redirectURIs, client.AccessTokenValiditySeconds, client.RefreshTokenValiditySeconds,
		lists.autoApprove, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create client", zap.String("client_id", client.ClientID), zap.Error(err))
		return domain.WrapInternal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientAlreadyExists
	}
	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, clientID string) (*domain.ClientDefinition, error) {
	client, err := scanClient(r.db.QueryRow(ctx, `
		SELECT `+clientColumns+`
		FROM oauth_client_details WHERE client_id = $1
	`, clientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		r.logger.Error("failed to find client by id", zap.String("client_id", clientID), zap.Error(err))
		return nil, domain.WrapInternal(err)
	}
	return client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.ClientDefinition) error {
	lists, err := encodeClientLists(client)
	if err != nil {
		return domain.WrapInternal(err)
	}
	client.UpdatedAt = time.Now()

	tag, err := r.db.ExecRaw(ctx, `
		UPDATE oauth_client_details
		SET authorities = $1, authorized_grant_types = $2, scopes = $3, redirect_uris = $4,
			access_token_validity_seconds = $5, refresh_token_validity_seconds = $6,
			auto_approve_scopes = $7, updated_at = $8
		WHERE client_id = $9
	`, lists.authorities, lists.grantTypes, lists.scopes, lists.redirectURIs,
		client.AccessTokenValiditySeconds, client.RefreshTokenValiditySeconds,
		lists.autoApprove, client.UpdatedAt, client.ClientID)
	if err != nil {
		r.logger.Error("failed to update client", zap.String("client_id", client.ClientID), zap.Error(err))
		return domain.WrapInternal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) UpdateSecret(ctx context.Context, clientID, secretHash string) error {
	tag, err := r.db.ExecRaw(ctx, `
		UPDATE oauth_client_details SET client_secret = $1, updated_at = $2 WHERE client_id = $3
	`, secretHash, time.Now(), clientID)
	if err != nil {
		r.logger.Error("failed to update client secret", zap.String("client_id", clientID), zap.Error(err))
		return domain.WrapInternal(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, clientID string) (bool, error) {
	tag, err := r.db.ExecRaw(ctx, "DELETE FROM oauth_client_details WHERE client_id = $1", clientID)
	if err != nil {
		r.logger.Error("failed to delete client", zap.String("client_id", clientID), zap.Error(err))
		return false, domain.WrapInternal(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]*domain.ClientDefinition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+clientColumns+`
		FROM oauth_client_details
		ORDER BY created_at DESC
	`)
	if err != nil {
		r.logger.Error("failed to list clients", zap.Error(err))
		return nil, domain.WrapInternal(err)
	}
	defer rows.Close()

	var clients []*domain.ClientDefinition
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, domain.WrapInternal(err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapInternal(err)
	}
	return clients, nil
}

func scanClient(row pgx.Row) (*domain.ClientDefinition, error) {
	client := &domain.ClientDefinition{}
	var (
		secret *string
		lists  clientLists
	)

	err := row.Scan(&client.ClientID, &secret, &lists.authorities, &lists.grantTypes, &lists.scopes,
		&lists.redirectURIs, &client.AccessTokenValiditySeconds, &client.RefreshTokenValiditySeconds,
		&lists.autoApprove, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}
	client.ClientSecret = deref(secret)

	if err := unmarshalJSON(lists.authorities, &client.Authorities); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(lists.grantTypes, &client.AuthorizedGrantTypes); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(lists.scopes, &client.Scopes); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(lists.redirectURIs, &client.RedirectURIs); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(lists.autoApprove, &client.AutoApproveScopes); err != nil {
		return nil, err
	}
	return client, nil
}
