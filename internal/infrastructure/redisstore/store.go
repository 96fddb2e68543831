// Package redisstore implements the OAuth2 repositories on Redis.
//
// Every record is a JSON string under prefix+type+":"+id. Secondary lookups use
// sets of record ids. Set members whose record is gone or no longer matches the
// set are treated as stale: they are skipped on read and removed best effort.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key types
const (
	keyTypeClient             = "client"
	keyTypeClients            = "clients"
	keyTypeCode               = "code"
	keyTypeAccess             = "access"
	keyTypeAccessByAuth       = "access_auth"
	keyTypeAccessByClient     = "access_client"
	keyTypeAccessByClientUser = "access_client_user"
	keyTypeAccessByRefresh    = "access_refresh"
	keyTypeRefresh            = "refresh"
	keyTypePartnerToken       = "partner_token"
	keyTypePartnerTokenByAuth = "partner_token_auth"
	keyTypePartner            = "partner"
	keyTypePartners           = "partners"
	maxWatchRetries           = 5
)

// Store holds the Redis client shared by every repository
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *zap.Logger
}

// NewClient connects to the Redis server described by cfg
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisReadTimeout,
		WriteTimeout: cfg.RedisWriteTimeout,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewStore creates a Store over a pre-configured client
func NewStore(client redis.UniversalClient, keyPrefix string, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Repositories returns every repository backed by this store
func (s *Store) Repositories() *domain.Repositories {
	return &domain.Repositories{
		Clients:       &ClientRepository{s},
		Codes:         &AuthorizationCodeRepository{s},
		AccessTokens:  &AccessTokenRepository{s},
		RefreshTokens: &RefreshTokenRepository{s},
		PartnerTokens: &PartnerTokenRepository{s},
		Partners:      &PartnerRepository{s},
	}
}

// Close closes the Redis client connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks Redis connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) key(keyType string, parts ...string) string {
	if len(parts) == 0 {
		return s.keyPrefix + keyType
	}
	return s.keyPrefix + keyType + ":" + strings.Join(parts, ":")
}

// watch runs fn in an optimistic transaction over keys, retrying when a watched key changes
func (s *Store) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return domain.WrapInternal(fmt.Errorf("transaction on %v kept conflicting", keys))
}

// getJSON loads and decodes the value at key, reporting false when the key is absent
func getJSON(ctx context.Context, c redis.Cmdable, key string, v interface{}) (bool, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, domain.WrapInternal(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, domain.WrapInternal(err)
	}
	return true, nil
}

// members loads every record listed in setKey whose id maps to a stored value accepted by match
func members[T any](ctx context.Context, s *Store, setKey, recordType string, match func(*T) bool) ([]*T, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, domain.WrapInternal(err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(recordType, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domain.WrapInternal(err)
	}

	var (
		out   []*T
		stale []interface{}
	)
	for i, value := range values {
		str, ok := value.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		record := new(T)
		if err := json.Unmarshal([]byte(str), record); err != nil {
			return nil, domain.WrapInternal(err)
		}
		if match != nil && !match(record) {
			stale = append(stale, ids[i])
			continue
		}
		out = append(out, record)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, setKey, stale...).Err(); err != nil {
			s.logger.Debug("failed to prune stale index members", zap.String("key", setKey), zap.Error(err))
		}
	}
	return out, nil
}
