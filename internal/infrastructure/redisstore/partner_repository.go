package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/redis/go-redis/v9"
)

// PartnerRepository implements domain.PartnerRepository on Redis
type PartnerRepository struct {
	*Store
}

func (r *PartnerRepository) Save(ctx context.Context, partner *domain.Partner) error {
	key := r.key(keyTypePartner, partner.PartnerID)

	return r.watch(ctx, func(tx *redis.Tx) error {
		previous := &domain.Partner{}
		found, err := getJSON(ctx, tx, key, previous)
		if err != nil {
			return err
		}

		now := time.Now()
		partner.CreatedAt = now
		if found {
			partner.CreatedAt = previous.CreatedAt
		}
		partner.UpdatedAt = now

		data, err := json.Marshal(partner)
		if err != nil {
			return domain.WrapInternal(err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, r.key(keyTypePartners), partner.PartnerID)
			return nil
		})
		if err != nil {
			return domain.WrapInternal(err)
		}
		return nil
	}, key)
}

func (r *PartnerRepository) FindByID(ctx context.Context, partnerID string) (*domain.Partner, error) {
	partner := &domain.Partner{}
	found, err := getJSON(ctx, r.client, r.key(keyTypePartner, partnerID), partner)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrPartnerNotFound
	}
	return partner, nil
}

func (r *PartnerRepository) Delete(ctx context.Context, partnerID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(keyTypePartner, partnerID))
		pipe.SRem(ctx, r.key(keyTypePartners), partnerID)
		return nil
	})
	if err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *PartnerRepository) List(ctx context.Context) ([]*domain.Partner, error) {
	return members[domain.Partner](ctx, r.Store, r.key(keyTypePartners), keyTypePartner, nil)
}
