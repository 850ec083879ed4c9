package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/config"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/database"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/repository"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/telemetry"
	"github.com/greencycle/waste-pickup-exchange/internal/service/auction"
)

// Standalone recovery sweeper. The API process runs its own sweep; this
// binary covers deployments where the API is scaled to zero or a
// backlog needs draining without serving traffic.
func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		once       = flag.Bool("once", false, "Run a single sweep and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, &cfg.Database, zapLogger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		return
	}
	defer pool.Close()

	pickupRepo := repository.NewPickupRepository(pool)
	bidRepo := repository.NewBidRepository(pool)
	directory := repository.NewDirectoryRepository(pool)

	// No scheduler here: every overdue request is picked up by the
	// sweep itself.
	svc := auction.NewService(
		pickupRepo,
		bidRepo,
		directory,
		auction.NewLogNotifier(logger),
		nil,
		nil,
		cfg.Auction,
		logger,
	)

	sweeper := auction.NewSweeper(pickupRepo, svc, cfg.Auction.SweepInterval, nil, logger)

	if *once {
		resolved, err := sweeper.SweepOnce(ctx)
		if err != nil {
			logger.Error("sweep failed", "error", err)
			return
		}
		logger.Info("sweep finished", "resolved", resolved)
		return
	}

	sweeper.Run(ctx)
}
