package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"taskhive/internal/achievements"
	"taskhive/internal/cache"
	"taskhive/internal/config"
	"taskhive/internal/database"
	"taskhive/internal/events"
	"taskhive/internal/repositories"
	"taskhive/internal/response"
	"taskhive/internal/router"
	"taskhive/internal/services"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting taskhive achievement service",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Service terminated", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Database
	dbManager, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database ready")

	// Cache
	cacheInstance, err := cache.New(&cache.Config{
		Provider:      cfg.Cache.Provider,
		TTL:           cfg.Cache.TTL,
		RedisURL:      cfg.Cache.RedisURL,
		RedisDB:       cfg.Cache.RedisDB,
		RedisPassword: cfg.Cache.RedisPassword,
		PoolSize:      cfg.Cache.PoolSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer cacheInstance.Close()

	// Event bus
	eventBus := events.NewEventBus(events.DefaultEventBusConfig(), logger)
	busCtx, busCancel := context.WithCancel(context.Background())
	defer busCancel()
	if err := eventBus.Start(busCtx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	registerEventLogging(eventBus, logger)

	// Repositories
	achievementRepo := repositories.NewAchievementRepository(dbManager, logger)
	activityRepo := repositories.NewActivityRepository(dbManager, logger)

	// Achievement engine
	synchronizer := achievements.NewSynchronizer(
		achievements.NewAggregators(activityRepo),
		achievementRepo,
		eventBus,
		cacheInstance,
		achievements.Config{
			MaxConcurrentAggregators: cfg.Achievements.MaxConcurrentAggregators,
			WriteRetryLimit:          uint64(cfg.Achievements.WriteRetryLimit),
			WriteRetryInterval:       cfg.Achievements.WriteRetryInterval,
		},
		logger,
	)
	queryService := achievements.NewQueryService(achievementRepo, cacheInstance, cfg.Achievements.ViewCacheTTL, logger)
	notificationGate := achievements.NewNotificationGate(achievementRepo, cacheInstance, logger)

	achievementService := services.NewAchievementService(
		synchronizer,
		queryService,
		notificationGate,
		activityRepo,
		cfg.Achievements.DefaultLocale,
		logger,
	)

	// HTTP surface
	responseConfig := response.DefaultConfig()
	responseConfig.MaskInternalErrors = cfg.IsProduction()
	responseBuilder := response.NewBuilder(responseConfig, logger)

	handler := router.SetupRouter(&router.Dependencies{
		AchievementService: achievementService,
		ResponseBuilder:    responseBuilder,
		DB:                 dbManager,
		Cache:              cacheInstance,
		EventBus:           eventBus,
		CORSOrigin:         cfg.Server.CORSOrigin,
		Logger:             logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		if err := eventBus.Stop(ctx); err != nil {
			logger.Warn("Event bus did not drain in time", zap.Error(err))
		}
	}

	return nil
}

// registerEventLogging subscribes audit logging for badge lifecycle events
func registerEventLogging(bus events.EventBus, logger *zap.Logger) {
	logEvent := func(ctx context.Context, event events.Event) error {
		logger.Info("Achievement event",
			zap.String("event_type", event.GetEventType()),
			zap.String("event_id", event.GetEventID()),
			zap.Any("metadata", event.GetMetadata()),
		)
		return nil
	}

	for _, eventType := range []string{
		events.EventTypeAchievementUnlocked,
		events.EventTypeAchievementLevelUp,
	} {
		if err := bus.Subscribe(eventType, events.NewEventHandlerFunc("audit_log_"+eventType, logEvent)); err != nil {
			logger.Warn("Failed to subscribe event logger", zap.String("event_type", eventType), zap.Error(err))
		}
	}
}

// initLogger builds the application logger from logging configuration
func initLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
