package boltstore

import (
	"context"

	"github.com/manorfm/tokenstore/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// PartnerTokenRepository implements domain.PartnerTokenRepository on bbolt
type PartnerTokenRepository struct {
	*Store
}

func (r *PartnerTokenRepository) Save(_ context.Context, record *domain.PartnerTokenRecord) error {
	return r.update(func(tx *bolt.Tx) error {
		tokens := tx.Bucket([]byte(partnerTokensBucketName))
		byAuth := tx.Bucket([]byte(partnerTokensByAuthBucketName))

		previous := &domain.PartnerTokenRecord{}
		found, err := load(tokens, record.TokenKey, previous)
		if err != nil {
			return err
		}
		if found {
			if err := byAuth.Delete(indexKey(record.TokenKey, previous.AuthenticationKey)); err != nil {
				return err
			}
		}

		if err := save(tokens, record.TokenKey, record); err != nil {
			return err
		}
		return byAuth.Put(indexKey(record.TokenKey, record.AuthenticationKey), []byte{})
	})
}

func (r *PartnerTokenRepository) FindByAuthenticationKey(_ context.Context, authenticationKey string) ([]*domain.PartnerTokenRecord, error) {
	var records []*domain.PartnerTokenRecord
	err := r.view(func(tx *bolt.Tx) error {
		tokens := tx.Bucket([]byte(partnerTokensBucketName))
		for _, id := range scanIndex(tx.Bucket([]byte(partnerTokensByAuthBucketName)), indexPrefix(authenticationKey)) {
			record := &domain.PartnerTokenRecord{}
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

func (r *PartnerTokenRepository) DeleteByAuthenticationKey(_ context.Context, authenticationKey string) (int, error) {
	removed := 0
	err := r.update(func(tx *bolt.Tx) error {
		tokens := tx.Bucket([]byte(partnerTokensBucketName))
		byAuth := tx.Bucket([]byte(partnerTokensByAuthBucketName))

		for _, id := range scanIndex(byAuth, indexPrefix(authenticationKey)) {
			if tokens.Get([]byte(id)) != nil {
				if err := tokens.Delete([]byte(id)); err != nil {
					return err
				}
				removed++
			}
			if err := byAuth.Delete(indexKey(id, authenticationKey)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
