package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/manorfm/tokenstore/internal/infrastructure/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator creates a migrate instance over the embedded migrations
func NewMigrator(cfg *config.Config) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("error opening embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations runs all pending migrations
func (p *Postgres) RunMigrations(ctx context.Context) error {
	connConfig := p.pool.Config().ConnConfig

	m, err := NewMigrator(&config.Config{
		DBUser:     connConfig.User,
		DBPassword: connConfig.Password,
		DBHost:     connConfig.Host,
		DBPort:     int(connConfig.Port),
		DBName:     connConfig.Database,
		DBSSLMode:  "disable",
	})
	if err != nil {
		return err
	}
	defer m.Close()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Run migrations
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running migrations: %w", err)
	}

	p.log.Info("Migrations completed successfully")
	return nil
}
