package redisstore

import (
	"context"
	"encoding/json"

	"github.com/manorfm/tokenstore/internal/domain"
)

// RefreshTokenRepository implements domain.RefreshTokenRepository on Redis
type RefreshTokenRepository struct {
	*Store
}

func (r *RefreshTokenRepository) Save(ctx context.Context, record *domain.RefreshTokenRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return domain.WrapInternal(err)
	}
	if err := r.client.Set(ctx, r.key(keyTypeRefresh, record.TokenKey), data, 0).Err(); err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindByKey(ctx context.Context, tokenKey string) (*domain.RefreshTokenRecord, error) {
	record := &domain.RefreshTokenRecord{}
	found, err := getJSON(ctx, r.client, r.key(keyTypeRefresh, tokenKey), record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrTokenNotFound
	}
	return record, nil
}

func (r *RefreshTokenRepository) DeleteByKey(ctx context.Context, tokenKey string) error {
	if err := r.client.Del(ctx, r.key(keyTypeRefresh, tokenKey)).Err(); err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}
