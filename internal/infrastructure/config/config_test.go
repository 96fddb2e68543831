package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendBolt, cfg.Backend)
				assert.Equal(t, 5432, cfg.DBPort)
				assert.Equal(t, 5*time.Second, cfg.DBConnectTimeout)
				assert.Equal(t, 3*time.Second, cfg.DBStatementTimeout)
				assert.Equal(t, 5*time.Second, cfg.RedisDialTimeout)
				assert.Equal(t, 3*time.Second, cfg.RedisReadTimeout)
				assert.Equal(t, "oauth:", cfg.RedisKeyPrefix)
			},
		},
		{
			name: "postgres backend",
			env: map[string]string{
				"STORAGE_BACKEND": "postgres",
				"DB_HOST":         "db.internal",
				"DB_PORT":         "6543",
				"DB_NAME":         "tokens",

				"DB_STATEMENT_TIMEOUT": "1500ms",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendPostgres, cfg.Backend)
				assert.Equal(t, 1500*time.Millisecond, cfg.DBStatementTimeout)
				assert.Equal(t, "db.internal", cfg.DBHost)
				assert.Equal(t, 6543, cfg.DBPort)
			},
		},
		{
			name: "redis timeouts",
			env: map[string]string{
				"STORAGE_BACKEND":    "redis",
				"REDIS_READ_TIMEOUT": "750ms",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, BackendRedis, cfg.Backend)
				assert.Equal(t, 750*time.Millisecond, cfg.RedisReadTimeout)
			},
		},
		{
			name:    "invalid db port",
			env:     map[string]string{"DB_PORT": "invalid"},
			wantErr: true,
		},
		{
			name:    "invalid duration",
			env:     map[string]string{"REDIS_DIAL_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"STORAGE_BACKEND": "mongo"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, BackendBolt, cfg.Backend)
	assert.Equal(t, "data/oauth.db", cfg.BoltPath)
	assert.Equal(t, 10, cfg.SecretHashCost)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig()
	cfg.Backend = BackendRedis
	cfg.RedisKeyPrefix = ""
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.Backend = BackendPostgres
	cfg.DBHost = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_PostgresURL(t *testing.T) {
	cfg := NewConfig()
	cfg.DBUser = "u"
	cfg.DBPassword = "p"
	cfg.DBHost = "h"
	cfg.DBPort = 1
	cfg.DBName = "n"
	assert.Equal(t, "postgres://u:p@h:1/n?sslmode=disable", cfg.PostgresURL())
}
