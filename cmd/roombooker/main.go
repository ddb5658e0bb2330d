package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"roombooker/internal/api"
	"roombooker/internal/config"
	"roombooker/internal/database"
	"roombooker/internal/events"
	"roombooker/internal/export"
	"roombooker/internal/logging"
	"roombooker/internal/metrics"
	"roombooker/internal/models"
	"roombooker/internal/netmon"
	"roombooker/internal/offline"
	"roombooker/internal/remote"
	"roombooker/internal/repository"
	"roombooker/internal/service"
	syncq "roombooker/internal/sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	remoteClient := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIKey,
		time.Duration(cfg.Remote.TimeoutSeconds)*time.Second)
	if redisClient != nil && cfg.Remote.CacheTTL > 0 {
		remoteClient.UseRedisCache(redisClient, time.Duration(cfg.Remote.CacheTTL)*time.Second)
	}

	monitor := netmon.NewMonitor(
		netmon.DialProbe(cfg.Remote.BaseURL, 5*time.Second),
		cfg.Sync.ProbeInterval(),
		&logger,
	)
	go monitor.Start(ctx)

	retryPolicy := syncq.RetryPolicy{
		MaxRetries:    cfg.Sync.MaxRetries,
		InitialDelay:  cfg.Sync.SyncInitialDelay(),
		MaxDelay:      cfg.Sync.SyncMaxDelay(),
		BackoffFactor: 2,
	}
	retryer := syncq.NewRetryer(retryPolicy, monitor)

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	queue := syncq.NewQueue(db, remoteClient, monitor, retryer, eventBus, redisClient,
		cfg.Sync.DrainBatchSize, &logger)
	go queue.Start(ctx)

	aggregator := offline.NewAggregator(db, queue, queue, monitor, &logger)

	sessionRepo := initSessionRepository(redisClient, &logger)
	bookingService := service.NewBookingService(aggregator, db, eventBus, &logger)
	userService := service.NewUserService(db, sessionRepo, &logger)
	exporter := export.NewExporter(db, cfg.Exports.Path)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, aggregator, bookingService, userService, exporter, &logger)
		go func() {
			if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = apiServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info().Str("environment", cfg.App.Environment).Msg("roombooker started")
	<-ctx.Done()
	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return nil, err
	}

	if err := db.SeedDemoData(ctx); err != nil {
		logger.Error().Err(err).Msg("Demo data seeding failed")
	}
	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}
	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}
	return redisClient
}

func initSessionRepository(redisClient *redis.Client, logger *zerolog.Logger) *repository.FailoverSessionRepository {
	ttl := time.Duration(models.DefaultSessionTTL) * time.Second
	fallback := repository.NewMemorySessionRepository(ttl)
	primary := repository.NewRedisSessionRepository(redisClient, ttl)
	return repository.NewFailoverSessionRepository(primary, fallback, logger)
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("Prometheus metrics server started")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server error")
	}
}

func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	logEvent := func(ev *events.Event) error {
		logger.Debug().Str("event", ev.Type).RawJSON("payload", ev.Payload).Msg("booking event")
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, logEvent)
	bus.Subscribe(events.EventBookingSynced, logEvent)
	bus.Subscribe(events.EventBookingSyncError, logEvent)
	bus.Subscribe(events.EventBookingCancelled, logEvent)
	bus.Subscribe(events.EventRoomsRefreshed, logEvent)
}
