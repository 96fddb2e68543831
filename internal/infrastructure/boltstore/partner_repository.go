package boltstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/manorfm/tokenstore/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// PartnerRepository implements domain.PartnerRepository on bbolt
type PartnerRepository struct {
	*Store
}

func (r *PartnerRepository) Save(_ context.Context, partner *domain.Partner) error {
	return r.update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(partnersBucketName))

		now := time.Now()
		partner.CreatedAt = now
		previous := &domain.Partner{}
		found, err := load(bkt, partner.PartnerID, previous)
		if err != nil {
			return err
		}
		if found {
			partner.CreatedAt = previous.CreatedAt
		}
		partner.UpdatedAt = now
		return save(bkt, partner.PartnerID, partner)
	})
}

func (r *PartnerRepository) FindByID(_ context.Context, partnerID string) (*domain.Partner, error) {
	partner := &domain.Partner{}
	err := r.view(func(tx *bolt.Tx) error {
		found, err := load(tx.Bucket([]byte(partnersBucketName)), partnerID, partner)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrPartnerNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return partner, nil
}

func (r *PartnerRepository) Delete(_ context.Context, partnerID string) error {
	return r.update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(partnersBucketName)).Delete([]byte(partnerID))
	})
}

func (r *PartnerRepository) List(_ context.Context) ([]*domain.Partner, error) {
	var partners []*domain.Partner
	err := r.view(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(partnersBucketName)).ForEach(func(k, v []byte) error {
			partner := &domain.Partner{}
			if err := json.Unmarshal(v, partner); err != nil {
				return domain.WrapInternal(err)
			}
			partners = append(partners, partner)
			return nil
		})
	})
	return partners, err
}
