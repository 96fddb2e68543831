package boltstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/manorfm/tokenstore/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// ClientRepository implements domain.ClientRepository on bbolt
type ClientRepository struct {
	*Store
}

func (r *ClientRepository) Create(_ context.Context, client *domain.ClientDefinition) error {
	return r.update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(clientsBucketName))
		// reject doubles
		if bkt.Get([]byte(client.ClientID)) != nil {
			return domain.ErrClientAlreadyExists
		}

		now := time.Now()
		if client.CreatedAt.IsZero() {
			client.CreatedAt = now
		}
		if client.UpdatedAt.IsZero() {
			client.UpdatedAt = now
		}
		return save(bkt, client.ClientID, client)
	})
}

func (r *ClientRepository) FindByID(_ context.Context, clientID string) (*domain.ClientDefinition, error) {
	client := &domain.ClientDefinition{}
	err := r.view(func(tx *bolt.Tx) error {
		found, err := load(tx.Bucket([]byte(clientsBucketName)), clientID, client)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrClientNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *ClientRepository) Update(_ context.Context, client *domain.ClientDefinition) error {
	return r.modify(client.ClientID, func(stored *domain.ClientDefinition) {
		secret, createdAt := stored.ClientSecret, stored.CreatedAt
		*stored = *client
		stored.ClientSecret = secret
		stored.CreatedAt = createdAt
	})
}

func (r *ClientRepository) UpdateSecret(_ context.Context, clientID, secretHash string) error {
	return r.modify(clientID, func(stored *domain.ClientDefinition) {
		stored.ClientSecret = secretHash
	})
}

func (r *ClientRepository) modify(clientID string, change func(*domain.ClientDefinition)) error {
	return r.update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(clientsBucketName))
		stored := &domain.ClientDefinition{}
		found, err := load(bkt, clientID, stored)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrClientNotFound
		}
		change(stored)
		stored.UpdatedAt = time.Now()
		return save(bkt, clientID, stored)
	})
}

func (r *ClientRepository) Delete(_ context.Context, clientID string) (bool, error) {
	existed := false
	err := r.update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(clientsBucketName))
		if bkt.Get([]byte(clientID)) == nil {
			return nil
		}
		existed = true
		return bkt.Delete([]byte(clientID))
	})
	return existed, err
}

func (r *ClientRepository) List(_ context.Context) ([]*domain.ClientDefinition, error) {
	var clients []*domain.ClientDefinition
	err := r.view(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(clientsBucketName)).ForEach(func(_, v []byte) error {
			client := &domain.ClientDefinition{}
			if err := json.Unmarshal(v, client); err != nil {
				return domain.WrapInternal(err)
			}
			clients = append(clients, client)
			return nil
		})
	})
	return clients, err
}
