package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/manorfm/tokenstore/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, int) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

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

	mapped, err := container.MappedPort(ctx, nat.Port(port))
	require.NoError(t, err)
	return host, mapped.Int()
}

// setupPostgres starts a PostgreSQL container and returns a postgres backend config for it.
// Migrations are applied by storage.Open.
func setupPostgres(t *testing.T) *config.Config {
	host, port := startContainer(t, testcontainers.ContainerRequest{
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
	}, "5432")

	cfg := config.NewConfig()
	cfg.Backend = config.BackendPostgres
	cfg.DBHost = host
	cfg.DBPort = port
	cfg.DBUser = "test"
	cfg.DBPassword = "test"
	cfg.DBName = "test"
	return cfg
}

// setupRedis starts a Redis container and returns a redis backend config for it
func setupRedis(t *testing.T) *config.Config {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort("6379/tcp"),
		),
	}, "6379")

	cfg := config.NewConfig()
	cfg.Backend = config.BackendRedis
	cfg.RedisAddr = fmt.Sprintf("%s:%d", host, port)
	cfg.RedisKeyPrefix = "it:oauth:"
	return cfg
}

func setupBolt(t *testing.T) *config.Config {
	cfg := config.NewConfig()
	cfg.Backend = config.BackendBolt
	cfg.BoltPath = t.TempDir() + "/oauth.db"
	return cfg
}
