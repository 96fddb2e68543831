package boltstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path, time.Second, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltRepositories(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) *domain.Repositories {
		return openTestStore(t, filepath.Join(t.TempDir(), "oauth.db")).Repositories()
	})
}

func TestOpen_CreatesDirectoryAndBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "oauth.db")
	store := openTestStore(t, path)

	err := store.db.View(func(tx *bolt.Tx) error {
		for _, name := range []string{clientsBucketName, codesBucketName, accessTokensBucketName,
			accessByRefreshBucketName, partnerTokensByAuthBucketName, partnersBucketName} {
			assert.NotNil(t, tx.Bucket([]byte(name)), name)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestOpen_LockedFileTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauth.db")
	openTestStore(t, path)

	_, err := Open(path, 50*time.Millisecond, zap.NewNop())
	assert.Error(t, err)
}

func TestRecordsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauth.db")
	ctx := context.Background()

	store, err := Open(path, time.Second, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Repositories().AccessTokens.Save(ctx,
		storagetest.AccessTokenRecord("k1", "a1", "c1", "alice", "r1")))
	require.NoError(t, store.Close())

	reopened := openTestStore(t, path)
	records, err := reopened.Repositories().AccessTokens.FindByClientIDAndUserName(ctx, "c1", "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "k1", records[0].TokenKey)
}

func TestIndexKeys(t *testing.T) {
	assert.Equal(t, []byte("c1\x00alice\x00k1"), indexKey("k1", "c1", "alice"))
	assert.Equal(t, []byte("c1\x00alice\x00"), indexPrefix("c1", "alice"))

	// A client id that prefixes another must not match it
	store := openTestStore(t, filepath.Join(t.TempDir(), "oauth.db"))
	ctx := context.Background()
	repo := store.Repositories().AccessTokens
	require.NoError(t, repo.Save(ctx, storagetest.AccessTokenRecord("k1", "a1", "c1", "alice", "")))
	require.NoError(t, repo.Save(ctx, storagetest.AccessTokenRecord("k2", "a2", "c10", "alice", "")))

	records, err := repo.FindByClientID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "k1", records[0].TokenKey)
}
