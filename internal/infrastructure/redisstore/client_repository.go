package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ClientRepository implements domain.ClientRepository on Redis
type ClientRepository struct {
	*Store
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.ClientDefinition) error {
	now := time.Now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = now
	}

	data, err := json.Marshal(client)
	if err != nil {
		return domain.WrapInternal(err)
	}

	// SetNX gives insert-if-absent semantics
	created, err := r.client.SetNX(ctx, r.key(keyTypeClient, client.ClientID), data, 0).Result()
	if err != nil {
		r.logger.Error("failed to create client", zap.String("client_id", client.ClientID), zap.Error(err))
		return domain.WrapInternal(err)
	}
	if !created {
		return domain.ErrClientAlreadyExists
	}

	if err := r.client.SAdd(ctx, r.key(keyTypeClients), client.ClientID).Err(); err != nil {
		// Compensating delete: the client must stay listable
		_ = r.client.Del(ctx, r.key(keyTypeClient, client.ClientID)).Err()
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, clientID string) (*domain.ClientDefinition, error) {
	client := &domain.ClientDefinition{}
	found, err := getJSON(ctx, r.client, r.key(keyTypeClient, clientID), client)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.ClientDefinition) error {
	return r.modify(ctx, client.ClientID, func(stored *domain.ClientDefinition) {
		secret, createdAt := stored.ClientSecret, stored.CreatedAt
		*stored = *client
		stored.ClientSecret = secret
		stored.CreatedAt = createdAt
	})
}

func (r *ClientRepository) UpdateSecret(ctx context.Context, clientID, secretHash string) error {
	return r.modify(ctx, clientID, func(stored *domain.ClientDefinition) {
		stored.ClientSecret = secretHash
	})
}

// modify applies change to the stored client inside a watched transaction
func (r *ClientRepository) modify(ctx context.Context, clientID string, change func(*domain.ClientDefinition)) error {
	key := r.key(keyTypeClient, clientID)

	return r.watch(ctx, func(tx *redis.Tx) error {
		stored := &domain.ClientDefinition{}
		found, err := getJSON(ctx, tx, key, stored)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrClientNotFound
		}

		change(stored)
		stored.UpdatedAt = time.Now()
		data, err := json.Marshal(stored)
		if err != nil {
			return domain.WrapInternal(err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
}

func (r *ClientRepository) Delete(ctx context.Context, clientID string) (bool, error) {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.key(keyTypeClient, clientID))
		pipe.SRem(ctx, r.key(keyTypeClients), clientID)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to delete client", zap.String("client_id", clientID), zap.Error(err))
		return false, domain.WrapInternal(err)
	}
	return del.Val() > 0, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]*domain.ClientDefinition, error) {
	return members[domain.ClientDefinition](ctx, r.Store, r.key(keyTypeClients), keyTypeClient, nil)
}
