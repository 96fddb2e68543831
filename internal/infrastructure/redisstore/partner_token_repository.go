package redisstore

import (
	"context"
	"encoding/json"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/redis/go-redis/v9"
)

// PartnerTokenRepository implements domain.PartnerTokenRepository on Redis
type PartnerTokenRepository struct {
	*Store
}

func (r *PartnerTokenRepository) Save(ctx context.Context, record *domain.PartnerTokenRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return domain.WrapInternal(err)
	}
	key := r.key(keyTypePartnerToken, record.TokenKey)

	return r.watch(ctx, func(tx *redis.Tx) error {
		previous := &domain.PartnerTokenRecord{}
		found, err := getJSON(ctx, tx, key, previous)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if found && previous.AuthenticationKey != record.AuthenticationKey {
				pipe.SRem(ctx, r.key(keyTypePartnerTokenByAuth, previous.AuthenticationKey), record.TokenKey)
			}
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, r.key(keyTypePartnerTokenByAuth, record.AuthenticationKey), record.TokenKey)
			return nil
		})
		if err != nil {
			return domain.WrapInternal(err)
		}
		return nil
	}, key)
}

func (r *PartnerTokenRepository) FindByAuthenticationKey(ctx context.Context, authenticationKey string) ([]*domain.PartnerTokenRecord, error) {
	return members(ctx, r.Store, r.key(keyTypePartnerTokenByAuth, authenticationKey), keyTypePartnerToken,
		func(rec *domain.PartnerTokenRecord) bool { return rec.AuthenticationKey == authenticationKey })
}

func (r *PartnerTokenRepository) DeleteByAuthenticationKey(ctx context.Context, authenticationKey string) (int, error) {
	setKey := r.key(keyTypePartnerTokenByAuth, authenticationKey)
	ids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, domain.WrapInternal(err)
	}

	removed := 0
	for _, id := range ids {
		key := r.key(keyTypePartnerToken, id)
		err := r.watch(ctx, func(tx *redis.Tx) error {
			record := &domain.PartnerTokenRecord{}
			found, err := getJSON(ctx, tx, key, record)
			if err != nil || !found || record.AuthenticationKey != authenticationKey {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err != nil {
				return domain.WrapInternal(err)
			}
			removed++
			return nil
		}, key)
		if err != nil {
			return removed, err
		}
	}

	if len(ids) > 0 {
		if err := r.client.SRem(ctx, setKey, toMembers(ids)...).Err(); err != nil {
			return removed, domain.WrapInternal(err)
		}
	}
	return removed, nil
}
