package boltstore

import (
	"context"

	"github.com/manorfm/tokenstore/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// AuthorizationCodeRepository implements domain.AuthorizationCodeRepository on bbolt
type AuthorizationCodeRepository struct {
	*Store
}

func (r *AuthorizationCodeRepository) Save(_ context.Context, code *domain.AuthorizationCode) error {
	return r.update(func(tx *bolt.Tx) error {
		return save(tx.Bucket([]byte(codesBucketName)), code.Code, code.Authentication)
	})
}

// Consume reads and deletes the code in one read-write transaction.
// bbolt serializes writers, so at most one caller observes the code.
func (r *AuthorizationCodeRepository) Consume(_ context.Context, code string) (*domain.Authentication, error) {
	auth := &domain.Authentication{}
	err := r.update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(codesBucketName))
		found, err := load(bkt, code, auth)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrAuthorizationCodeNotFound
		}
		return bkt.Delete([]byte(code))
	})
	if err != nil {
		return nil, err
	}
	return auth, nil
}
