package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vendorsuite/ordersplit-backend/internal/catalog"
	"github.com/vendorsuite/ordersplit-backend/internal/split"
	"github.com/vendorsuite/ordersplit-backend/internal/split/consumer"
	"github.com/vendorsuite/ordersplit-backend/internal/status"
	"github.com/vendorsuite/ordersplit-backend/internal/vendors"
	"github.com/vendorsuite/ordersplit-backend/pkg/config"
	"github.com/vendorsuite/ordersplit-backend/pkg/db"
	"github.com/vendorsuite/ordersplit-backend/pkg/logger"
	"github.com/vendorsuite/ordersplit-backend/pkg/metrics"
	"github.com/vendorsuite/ordersplit-backend/pkg/migrate"
	"github.com/vendorsuite/ordersplit-backend/pkg/outbox"
	"github.com/vendorsuite/ordersplit-backend/pkg/outbox/idempotency"
	"github.com/vendorsuite/ordersplit-backend/pkg/pubsub"
	"github.com/vendorsuite/ordersplit-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "split-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "split-worker"

	logg = logger.New(logger.Options{
		ServiceName: "split-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	commandsSubscription := pubsubClient.CommandsSubscription()
	if commandsSubscription == nil {
		logg.Error(context.Background(), "commands subscription not configured", errors.New("ORDERSPLIT_PUBSUB_COMMANDS_SUBSCRIPTION is required"))
		os.Exit(1)
	}

	splitMetrics := metrics.NewSplitMetrics(prometheus.DefaultRegisterer)
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	directory, err := vendors.NewDirectory(vendors.NewRepository(dbClient.DB()), cfg.Split.UnknownVendorName)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor directory", err)
		os.Exit(1)
	}
	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	splitSvc, err := split.NewService(split.NewRepository(dbClient.DB()), dbClient, outboxSvc, directory, catalogSvc, logg, splitMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create split service", err)
		os.Exit(1)
	}

	locker, err := status.NewRedisLocker(redisClient, cfg.Split.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create status locker", err)
		os.Exit(1)
	}
	statusSvc, err := status.NewService(status.NewRepository(dbClient.DB()), dbClient, outboxSvc, locker, logg, splitMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create status service", err)
		os.Exit(1)
	}

	idempotencyManager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}
	commandConsumer, err := consumer.NewConsumer(splitSvc, statusSvc, commandsSubscription, idempotencyManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create command consumer", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		PubSub:   pubsubClient,
		Consumer: commandConsumer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create split worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting split worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "split worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "split worker shutting down gracefully")
}
