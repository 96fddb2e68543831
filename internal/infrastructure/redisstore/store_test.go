package redisstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/config"
	"github.com/manorfm/tokenstore/internal/infrastructure/storagetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPrefix = "test:oauth:"

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, testPrefix, zap.NewNop()), mr
}

func TestRedisRepositories(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) *domain.Repositories {
		store, _ := newTestStore(t)
		return store.Repositories()
	})
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.NewConfig()
	cfg.RedisAddr = mr.Addr()

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	store := NewStore(client, cfg.RedisKeyPrefix, zap.NewNop())
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	cfg.RedisAddr = "127.0.0.1:1"
	_, err = NewClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestKeysUsePrefix(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	repos := store.Repositories()

	require.NoError(t, repos.Clients.Create(ctx, storagetest.Client("c1")))
	require.NoError(t, repos.AccessTokens.Save(ctx, storagetest.AccessTokenRecord("k1", "a1", "c1", "alice", "r1")))

	assert.True(t, mr.Exists(testPrefix+"client:c1"))
	assert.True(t, mr.Exists(testPrefix+"access:k1"))

	members, err := mr.SMembers(testPrefix + "access_client_user:c1:alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, members)

	members, err = mr.SMembers(testPrefix + "access_refresh:r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, members)

	// No expiry is ever set
	assert.Zero(t, mr.TTL(testPrefix+"access:k1"))
}

func TestStaleIndexMembersArePruned(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	repos := store.Repositories()

	require.NoError(t, repos.AccessTokens.Save(ctx, storagetest.AccessTokenRecord("k1", "a1", "c1", "alice", "")))

	// Record vanishes behind the index
	mr.Del(testPrefix + "access:k1")

	// Record reappears under another client without touching the old index
	moved := storagetest.AccessTokenRecord("k2", "a2", "c2", "bob", "")
	data, err := json.Marshal(moved)
	require.NoError(t, err)
	require.NoError(t, mr.Set(testPrefix+"access:k2", string(data)))
	_, err = mr.SAdd(testPrefix+"access_client:c1", "k2")
	require.NoError(t, err)

	records, err := repos.AccessTokens.FindByClientID(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, records)

	members, err := mr.SMembers(testPrefix + "access_client:c1")
	if err == nil {
		assert.Empty(t, members)
	}
}
