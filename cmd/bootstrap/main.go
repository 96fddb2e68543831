package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/manorfm/tokenstore/internal/application"
	"github.com/manorfm/tokenstore/internal/infrastructure/bootstrap"
	"github.com/manorfm/tokenstore/internal/infrastructure/config"
	"github.com/manorfm/tokenstore/internal/infrastructure/keygen"
	"github.com/manorfm/tokenstore/internal/infrastructure/logging"
	"github.com/manorfm/tokenstore/internal/infrastructure/password"
	"github.com/manorfm/tokenstore/internal/infrastructure/storage"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "Bootstrap file path (overrides BOOTSTRAP_FILE)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *file != "" {
		cfg.BootstrapFile = *file
	}

	logger, err := logging.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := keygen.Verify(); err != nil {
		logger.Fatal("Token key derivation unavailable", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage backend", zap.Error(err))
	}
	defer backend.Close()

	if cfg.BootstrapFile == "" {
		logger.Info("No bootstrap file configured, storage is ready")
		return
	}

	doc, err := bootstrap.Load(cfg.BootstrapFile)
	if err != nil {
		logger.Fatal("Failed to load bootstrap file", zap.String("path", cfg.BootstrapFile), zap.Error(err))
	}

	stores := application.NewStores(backend.Repositories, password.NewEncoder(cfg.SecretHashCost), logger)
	if _, err := bootstrap.Apply(ctx, stores.Clients, stores.Partners, doc, logger); err != nil {
		logger.Error("Failed to apply bootstrap file", zap.Error(err))
		backend.Close()
		os.Exit(1)
	}
}
