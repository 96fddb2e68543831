package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend names a storage backend
type Backend string

const (
	// BackendPostgres stores records in PostgreSQL
	BackendPostgres Backend = "postgres"
	// BackendRedis stores records in Redis
	BackendRedis Backend = "redis"
	// BackendBolt stores records in an embedded bbolt file
	BackendBolt Backend = "bolt"
)

// Config holds the application configuration
type Config struct {
	// Storage backend selection
	Backend Backend `env:"STORAGE_BACKEND" envDefault:"bolt"`

	// Database configuration
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"owner"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"ownerTest"`
	DBName     string `env:"DB_NAME" envDefault:"oauth"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	// Zero disables the timeout
	DBConnectTimeout   time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"3s"`

	// Redis configuration
	RedisAddr         string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisUsername     string        `env:"REDIS_USERNAME"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"oauth:"`
	RedisDialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	RedisReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	RedisWriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`

	// Bolt configuration
	BoltPath        string        `env:"BOLT_PATH" envDefault:"data/oauth.db"`
	BoltOpenTimeout time.Duration `env:"BOLT_OPEN_TIMEOUT" envDefault:"5s"`

	// Client secret hashing
	SecretHashCost int `env:"SECRET_HASH_COST" envDefault:"10"`

	// Static clients and partners registered by cmd/bootstrap
	BootstrapFile string `env:"BOOTSTRAP_FILE"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"production"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	cfg := &Config{}
	// Defaults only; parsing an empty environment cannot fail.
	_ = env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings required by the selected backend
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPostgres:
		if c.DBHost == "" || c.DBName == "" {
			return fmt.Errorf("postgres backend requires DB_HOST and DB_NAME")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis backend requires REDIS_ADDR")
		}
		if c.RedisKeyPrefix == "" {
			return fmt.Errorf("redis backend requires REDIS_KEY_PREFIX")
		}
	case BackendBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("bolt backend requires BOLT_PATH")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
	return nil
}

// PostgresURL returns the connection URL used by pgx and golang-migrate
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
