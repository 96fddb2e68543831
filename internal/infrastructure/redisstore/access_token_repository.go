package redisstore

import (
	"context"
	"encoding/json"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AccessTokenRepository implements domain.AccessTokenRepository on Redis
type AccessTokenRepository struct {
	*Store
}

// indexKeys returns every set the record is listed in
func (r *AccessTokenRepository) indexKeys(record *domain.AccessTokenRecord) []string {
	keys := []string{
		r.key(keyTypeAccessByAuth, record.AuthenticationKey),
		r.key(keyTypeAccessByClient, record.ClientID),
		r.key(keyTypeAccessByClientUser, record.ClientID, record.UserName),
	}
	if record.RefreshTokenKey != "" {
		keys = append(keys, r.key(keyTypeAccessByRefresh, record.RefreshTokenKey))
	}
	return keys
}

func (r *AccessTokenRepository) Save(ctx context.Context, record *domain.AccessTokenRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return domain.WrapInternal(err)
	}
	key := r.key(keyTypeAccess, record.TokenKey)

	return r.watch(ctx, func(tx *redis.Tx) error {
		previous := &domain.AccessTokenRecord{}
		found, err := getJSON(ctx, tx, key, previous)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if found {
				for _, idx := range r.indexKeys(previous) {
					pipe.SRem(ctx, idx, record.TokenKey)
				}
			}
			pipe.Set(ctx, key, data, 0)
			for _, idx := range r.indexKeys(record) {
				pipe.SAdd(ctx, idx, record.TokenKey)
			}
			return nil
		})
		if err != nil {
			return domain.WrapInternal(err)
		}
		return nil
	}, key)
}

func (r *AccessTokenRepository) FindByKey(ctx context.Context, tokenKey string) (*domain.AccessTokenRecord, error) {
	record := &domain.AccessTokenRecord{}
	found, err := getJSON(ctx, r.client, r.key(keyTypeAccess, tokenKey), record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrTokenNotFound
	}
	return record, nil
}

func (r *AccessTokenRepository) FindByAuthenticationKey(ctx context.Context, authenticationKey string) ([]*domain.AccessTokenRecord, error) {
	return members(ctx, r.Store, r.key(keyTypeAccessByAuth, authenticationKey), keyTypeAccess,
		func(rec *domain.AccessTokenRecord) bool { return rec.AuthenticationKey == authenticationKey })
}

func (r *AccessTokenRepository) FindByClientID(ctx context.Context, clientID string) ([]*domain.AccessTokenRecord, error) {
	return members(ctx, r.Store, r.key(keyTypeAccessByClient, clientID), keyTypeAccess,
		func(rec *domain.AccessTokenRecord) bool { return rec.ClientID == clientID })
}

func (r *AccessTokenRepository) FindByClientIDAndUserName(ctx context.Context, clientID, userName string) ([]*domain.AccessTokenRecord, error) {
	return members(ctx, r.Store, r.key(keyTypeAccessByClientUser, clientID, userName), keyTypeAccess,
		func(rec *domain.AccessTokenRecord) bool { return rec.ClientID == clientID && rec.UserName == userName })
}

func (r *AccessTokenRepository) DeleteByKey(ctx context.Context, tokenKey string) error {
	_, err := r.deleteIf(ctx, tokenKey, nil)
	return err
}

func (r *AccessTokenRepository) DeleteByRefreshTokenKey(ctx context.Context, refreshTokenKey string) (int, error) {
	setKey := r.key(keyTypeAccessByRefresh, refreshTokenKey)
	ids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return 0, domain.WrapInternal(err)
	}

	removed := 0
	for _, id := range ids {
		deleted, err := r.deleteIf(ctx, id, func(rec *domain.AccessTokenRecord) bool {
			return rec.RefreshTokenKey == refreshTokenKey
		})
		if err != nil {
			return removed, err
		}
		if deleted {
			removed++
		}
	}

	if len(ids) > 0 {
		if err := r.client.SRem(ctx, setKey, toMembers(ids)...).Err(); err != nil {
			r.logger.Debug("failed to prune refresh index", zap.String("key", setKey), zap.Error(err))
		}
	}
	return removed, nil
}

// deleteIf removes the record and its index entries when match accepts it
func (r *AccessTokenRepository) deleteIf(ctx context.Context, tokenKey string, match func(*domain.AccessTokenRecord) bool) (bool, error) {
	key := r.key(keyTypeAccess, tokenKey)
	deleted := false

	err := r.watch(ctx, func(tx *redis.Tx) error {
		record := &domain.AccessTokenRecord{}
		found, err := getJSON(ctx, tx, key, record)
		if err != nil || !found {
			return err
		}
		if match != nil && !match(record) {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			for _, idx := range r.indexKeys(record) {
				pipe.SRem(ctx, idx, tokenKey)
			}
			return nil
		})
		if err != nil {
			return domain.WrapInternal(err)
		}
		deleted = true
		return nil
	}, key)
	return deleted, err
}

func toMembers(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
