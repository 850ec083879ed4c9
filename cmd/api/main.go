package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/greencycle/waste-pickup-exchange/internal/api/rest"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/cache"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/config"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/database"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/repository"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/telemetry"
	"github.com/greencycle/waste-pickup-exchange/internal/metrics"
	"github.com/greencycle/waste-pickup-exchange/internal/service/auction"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Setup("waste-pickup-exchange", cfg.Version, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	pool, err := database.NewPool(ctx, &cfg.Database, zapLogger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		return
	}
	defer pool.Close()

	pickupRepo := repository.NewPickupRepository(pool)
	bidRepo := repository.NewBidRepository(pool)
	directory := repository.NewDirectoryRepository(pool)

	// Redis is an optimization, not a dependency: without it the
	// directory is read straight from Postgres.
	if redisClient, err := cache.NewRedisClient(&cfg.Redis, zapLogger); err != nil {
		logger.Warn("redis unavailable, vendor lists uncached", "error", err)
	} else {
		defer redisClient.Close()
		directory = cache.NewCachedDirectory(directory, redisClient, cfg.Auction.VendorCacheTTL, zapLogger)
	}

	registry, err := metrics.NewRegistry("waste-pickup-exchange")
	if err != nil {
		logger.Error("metrics registry failed", "error", err)
		return
	}
	// The gauge reads the store so every replica reports the same
	// number of open auctions.
	registry.RegisterOpenAuctionsObserver(pickupRepo.CountBidding)

	scheduler := auction.NewScheduler(logger)
	defer scheduler.Stop()

	svc := auction.NewService(
		pickupRepo,
		bidRepo,
		directory,
		auction.NewLogNotifier(logger),
		scheduler,
		registry,
		cfg.Auction,
		logger,
	)

	sweeper := auction.NewSweeper(pickupRepo, svc, cfg.Auction.SweepInterval, registry, logger)
	go sweeper.Run(ctx)

	handler := rest.NewHandler(svc, logger)
	server := rest.NewServer(cfg.Server, rest.NewRouter(handler, rest.DefaultRouterConfig()), logger)

	logger.Info("waste pickup exchange starting",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"bidding_window", cfg.Auction.BiddingWindow)

	if err := server.Run(ctx); err != nil {
		logger.Error("server terminated", "error", err)
	}
}
