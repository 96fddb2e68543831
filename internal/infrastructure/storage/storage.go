// Package storage opens the repository backend selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/manorfm/tokenstore/internal/domain"
	"github.com/manorfm/tokenstore/internal/infrastructure/boltstore"
	"github.com/manorfm/tokenstore/internal/infrastructure/config"
	"github.com/manorfm/tokenstore/internal/infrastructure/database"
	"github.com/manorfm/tokenstore/internal/infrastructure/redisstore"
	"github.com/manorfm/tokenstore/internal/infrastructure/repository"
	"go.uber.org/zap"
)

// Backend is an open storage backend
type Backend struct {
	Name         config.Backend
	Repositories *domain.Repositories
	close        func() error
}

// Close releases the backend's connections or file handles
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the backend named by cfg.Backend.
// The postgres backend runs pending migrations before returning.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	logger = logger.With(zap.String("backend", string(cfg.Backend)))

	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, domain.WrapInternal(err)
		}
		if err := db.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, domain.WrapInternal(err)
		}
		logger.Info("storage backend opened")
		return &Backend{
			Name:         cfg.Backend,
			Repositories: repository.NewRepositories(db, logger),
			close: func() error {
				db.Close()
				return nil
			},
		}, nil

	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg)
		if err != nil {
			return nil, domain.WrapInternal(err)
		}
		store := redisstore.NewStore(client, cfg.RedisKeyPrefix, logger)
		logger.Info("storage backend opened", zap.String("addr", cfg.RedisAddr))
		return &Backend{
			Name:         cfg.Backend,
			Repositories: store.Repositories(),
			close:        store.Close,
		}, nil

	case config.BackendBolt:
		store, err := boltstore.Open(cfg.BoltPath, cfg.BoltOpenTimeout, logger)
		if err != nil {
			return nil, domain.WrapInternal(err)
		}
		logger.Info("storage backend opened", zap.String("path", cfg.BoltPath))
		return &Backend{
			Name:         cfg.Backend,
			Repositories: store.Repositories(),
			close:        store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedBackend, cfg.Backend)
	}
}
