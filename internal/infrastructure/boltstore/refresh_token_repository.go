package boltstore

import (
	"context"

	"github.com/manorfm/tokenstore/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// RefreshTokenRepository implements domain.RefreshTokenRepository on bbolt
type RefreshTokenRepository struct {
	*Store
}

func (r *RefreshTokenRepository) Save(_ context.Context, record *domain.RefreshTokenRecord) error {
	return r.update(func(tx *bolt.Tx) error {
		return save(tx.Bucket([]byte(refreshTokensBucketName)), record.TokenKey, record)
	})
}

func (r *RefreshTokenRepository) FindByKey(_ context.Context, tokenKey string) (*domain.RefreshTokenRecord, error) {
	record := &domain.RefreshTokenRecord{}
	err := r.view(func(tx *bolt.Tx) error {
		found, err := load(tx.Bucket([]byte(refreshTokensBucketName)), tokenKey, record)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrTokenNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *RefreshTokenRepository) DeleteByKey(_ context.Context, tokenKey string) error {
	return r.update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(refreshTokensBucketName)).Delete([]byte(tokenKey))
	})
}
