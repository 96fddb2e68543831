package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/config"
	"github.com/manorfm/tokenstore/internal/infrastructure/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(cfg *config.Config)
	}{
		{
			name: "bolt",
			setup: func(cfg *config.Config) {
				cfg.Backend = config.BackendBolt
				cfg.BoltPath = filepath.Join(t.TempDir(), "oauth.db")
			},
		},
		{
			name: "redis",
			setup: func(cfg *config.Config) {
				cfg.Backend = config.BackendRedis
				cfg.RedisAddr = mr.Addr()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			tt.setup(cfg)

			backend, err := Open(ctx, cfg, zap.NewNop())
			require.NoError(t, err)
			defer backend.Close()

			assert.Equal(t, cfg.Backend, backend.Name)
			repos := backend.Repositories
			require.NotNil(t, repos.Clients)
			require.NotNil(t, repos.Codes)
			require.NotNil(t, repos.AccessTokens)
			require.NotNil(t, repos.RefreshTokens)
			require.NotNil(t, repos.PartnerTokens)
			require.NotNil(t, repos.Partners)

			require.NoError(t, repos.Clients.Create(ctx, storagetest.Client("c-"+tt.name)))
			got, err := repos.Clients.FindByID(ctx, "c-"+tt.name)
			require.NoError(t, err)
			assert.Equal(t, "c-"+tt.name, got.ClientID)
		})
	}
}

func TestOpen_UnsupportedBackend(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Backend = "cassandra"

	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrUnsupportedBackend)
}

func TestOpen_UnreachableRedis(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Backend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInternal)
}
