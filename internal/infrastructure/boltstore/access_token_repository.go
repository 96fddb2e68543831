package boltstore

import (
	"context"

	"github.com/manorfm/tokenstore/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// AccessTokenRepository implements domain.AccessTokenRepository on bbolt
type AccessTokenRepository struct {
	*Store
}

type accessIndex struct {
	bucket string
	key    []byte
}

func accessIndexes(record *domain.AccessTokenRecord) []accessIndex {
	idx := []accessIndex{
		{accessByAuthBucketName, indexKey(record.TokenKey, record.AuthenticationKey)},
		{accessByClientBucketName, indexKey(record.TokenKey, record.ClientID)},
		{accessByClientUserBucketName, indexKey(record.TokenKey, record.ClientID, record.UserName)},
	}
	if record.RefreshTokenKey != "" {
		idx = append(idx, accessIndex{accessByRefreshBucketName, indexKey(record.TokenKey, record.RefreshTokenKey)})
	}
	return idx
}

func (r *AccessTokenRepository) Save(_ context.Context, record *domain.AccessTokenRecord) error {
	return r.update(func(tx *bolt.Tx) error {
		if _, err := deleteAccessToken(tx, record.TokenKey); err != nil {
			return err
		}
		if err := save(tx.Bucket([]byte(accessTokensBucketName)), record.TokenKey, record); err != nil {
			return err
		}
		for _, idx := range accessIndexes(record) {
			if err := tx.Bucket([]byte(idx.bucket)).Put(idx.key, []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AccessTokenRepository) FindByKey(_ context.Context, tokenKey string) (*domain.AccessTokenRecord, error) {
	record := &domain.AccessTokenRecord{}
	err := r.view(func(tx *bolt.Tx) error {
		found, err := load(tx.Bucket([]byte(accessTokensBucketName)), tokenKey, record)
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

func (r *AccessTokenRepository) FindByAuthenticationKey(_ context.Context, authenticationKey string) ([]*domain.AccessTokenRecord, error) {
	return r.findByIndex(accessByAuthBucketName, authenticationKey)
}

func (r *AccessTokenRepository) FindByClientID(_ context.Context, clientID string) ([]*domain.AccessTokenRecord, error) {
	return r.findByIndex(accessByClientBucketName, clientID)
}

func (r *AccessTokenRepository) FindByClientIDAndUserName(_ context.Context, clientID, userName string) ([]*domain.AccessTokenRecord, error) {
	return r.findByIndex(accessByClientUserBucketName, clientID, userName)
}

func (r *AccessTokenRepository) findByIndex(bucket string, values ...string) ([]*domain.AccessTokenRecord, error) {
	var records []*domain.AccessTokenRecord
	err := r.view(func(tx *bolt.Tx) error {
		tokens := tx.Bucket([]byte(accessTokensBucketName))
		for _, id := range scanIndex(tx.Bucket([]byte(bucket)), indexPrefix(values...)) {
			record := &domain.AccessTokenRecord{}
			found, err := load(tokens, id, record)
			if err != nil {
				return err
			}
			if found {
				records = append(records, record)
			}
		}
		return nil
	})
	return records, err
}

func (r *AccessTokenRepository) DeleteByKey(_ context.Context, tokenKey string) error {
	return r.update(func(tx *bolt.Tx) error {
		_, err := deleteAccessToken(tx, tokenKey)
		return err
	})
}

func (r *AccessTokenRepository) DeleteByRefreshTokenKey(_ context.Context, refreshTokenKey string) (int, error) {
	removed := 0
	err := r.update(func(tx *bolt.Tx) error {
		ids := scanIndex(tx.Bucket([]byte(accessByRefreshBucketName)), indexPrefix(refreshTokenKey))
		for _, id := range ids {
			deleted, err := deleteAccessToken(tx, id)
			if err != nil {
				return err
			}
			if deleted {
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// deleteAccessToken removes the record and every index entry pointing at it
func deleteAccessToken(tx *bolt.Tx, tokenKey string) (bool, error) {
	tokens := tx.Bucket([]byte(accessTokensBucketName))
	record := &domain.AccessTokenRecord{}
	found, err := load(tokens, tokenKey, record)
	if err != nil || !found {
		return false, err
	}

	for _, idx := range accessIndexes(record) {
		if err := tx.Bucket([]byte(idx.bucket)).Delete(idx.key); err != nil {
			return false, err
		}
	}
	if err := tokens.Delete([]byte(tokenKey)); err != nil {
		return false, err
	}
	return true, nil
}
