package redisstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AuthorizationCodeRepository implements domain.AuthorizationCodeRepository on Redis
type AuthorizationCodeRepository struct {
	*Store
}

func (r *AuthorizationCodeRepository) Save(ctx context.Context, code *domain.AuthorizationCode) error {
	data, err := json.Marshal(code.Authentication)
	if err != nil {
		return domain.WrapInternal(err)
	}
	if err := r.client.Set(ctx, r.key(keyTypeCode, code.Code), data, 0).Err(); err != nil {
		return domain.WrapInternal(err)
	}
	return nil
}

func (r *AuthorizationCodeRepository) Consume(ctx context.Context, code string) (*domain.Authentication, error) {
	// GETDEL is atomic, so only one caller can receive the value
	data, err := r.client.GetDel(ctx, r.key(keyTypeCode, code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrAuthorizationCodeNotFound
	}
	if err != nil {
		return nil, domain.WrapInternal(err)
	}

	auth := &domain.Authentication{}
	if err := json.Unmarshal(data, auth); err != nil {
		return nil, domain.WrapInternal(err)
	}
	return auth, nil
}
