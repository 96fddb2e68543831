package database

import (
	"context"
	"testing"
	"time"

	"github.com/manorfm/tokenstore/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupTestContainer starts a PostgreSQL container and returns a config pointing at it
func setupTestContainer(t *testing.T) *config.Config {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return &config.Config{
		Backend:    config.BackendPostgres,
		DBHost:     host,
		DBPort:     port.Int(),
		DBUser:     "test",
		DBPassword: "test",
		DBName:     "test",
		DBSSLMode:  "disable",
	}
}

func TestNewPostgres(t *testing.T) {
	cfg := setupTestContainer(t)
	ctx := context.Background()
	logger := zap.NewNop()

	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
	}{
		{
			name:    "valid configuration",
			cfg:     cfg,
			wantErr: false,
		},
		{
			name: "invalid host",
			cfg: &config.Config{
				DBHost:     "invalid-host",
				DBPort:     5432,
				DBUser:     "test",
				DBPassword: "test",
				DBName:     "test",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewPostgres(ctx, tt.cfg, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer db.Close()
			assert.NotNil(t, db.pool)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, db.Ping())

			// Test query row
			var result int
			err = db.QueryRow(ctx, "SELECT 1").Scan(&result)
			require.NoError(t, err)
			assert.Equal(t, 1, result)

			// Test exec
			require.NoError(t, db.Exec(ctx, "SELECT 1"))

			tag, err := db.ExecRaw(ctx, "SELECT 1")
			require.NoError(t, err)
			assert.Equal(t, int64(1), tag.RowsAffected())
		})
	}
}

func TestConnString(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     5432,
		DBUser:     "u",
		DBPassword: "p",
		DBName:     "oauth",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=oauth sslmode=disable", connString(cfg))

	cfg.DBSSLMode = "require"
	cfg.DBConnectTimeout = 5 * time.Second
	cfg.DBStatementTimeout = 1500 * time.Millisecond
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=oauth sslmode=require connect_timeout=5 statement_timeout=1500",
		connString(cfg))
}

func TestNewPostgres_StatementTimeout(t *testing.T) {
	cfg := setupTestContainer(t)
	cfg.DBStatementTimeout = 200 * time.Millisecond
	ctx := context.Background()

	db, err := NewPostgres(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	var timeout string
	require.NoError(t, db.QueryRow(ctx, "SHOW statement_timeout").Scan(&timeout))
	assert.Equal(t, "200ms", timeout)

	assert.Error(t, db.Exec(ctx, "SELECT pg_sleep(2)"))
}

func TestPostgres_RunMigrations(t *testing.T) {
	cfg := setupTestContainer(t)
	ctx := context.Background()

	db, err := NewPostgres(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.RunMigrations(ctx))
	// A second run is a no-op
	require.NoError(t, db.RunMigrations(ctx))

	for _, table := range []string{
		"oauth_client_details",
		"oauth_codes",
		"oauth_access_tokens",
		"oauth_refresh_tokens",
		"oauth_partner_tokens",
		"oauth_partners",
	} {
		var exists bool
		err := db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}

func TestPostgres_Close(t *testing.T) {
	cfg := setupTestContainer(t)
	ctx := context.Background()

	db, err := NewPostgres(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, db.pool.Ping(ctx))
}
