package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stayfront/internal/api"
	"stayfront/internal/backend"
	"stayfront/internal/config"
	"stayfront/internal/events"
	"stayfront/internal/google"
	"stayfront/internal/logging"
	"stayfront/internal/notify"
	"stayfront/internal/repository"
	"stayfront/internal/session"
	"stayfront/internal/worker"

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
		defer (func() { _ = closer.Close() })()
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.BackendTimeout(), logging.Component(&logger, "backend"))
	if redisClient != nil && cfg.Backend.CacheTTL > 0 {
		backendClient.UseRedisCache(redisClient, time.Duration(cfg.Backend.CacheTTL)*time.Second)
	}

	sessions := session.NewHTTPChecker(cfg.Session.BaseURL, cfg.SessionTimeout(), logging.Component(&logger, "session"))

	store := initViewStateStore(cfg, redisClient, &logger)
	bus := events.NewBus()

	if cfg.Telegram.Enabled {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram, logging.Component(&logger, "notify"))
		if err != nil {
			logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		} else {
			notifier.Attach(bus)
			logger.Info().Msg("telegram notifications enabled")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	payouts := startPayoutPoller(ctx, cfg, backendClient, &logger)
	syncWorker := startSheetsWorker(ctx, cfg, backendClient, redisClient, &logger)

	server := api.NewServer(cfg, api.Deps{
		Backend:  backendClient,
		Sessions: sessions,
		Store:    store,
		Bus:      bus,
		Payouts:  payouts,
		Sync:     syncWorker,
		Logger:   logging.Component(&logger, "http"),
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	logger.Info().Msg("server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initViewStateStore prefers redis with an in-memory fallback so table
// state survives restarts when redis is around but never blocks startup.
func initViewStateStore(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) repository.ViewStateStore {
	ttl := time.Duration(cfg.View.StateTTL) * time.Second
	memory := repository.NewMemoryViewStateStore(ttl)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisViewStateStore(redisClient, ttl)
	return repository.NewFailoverViewStateStore(primary, memory, logger)
}

func startPayoutPoller(ctx context.Context, cfg *config.Config, backendClient *backend.Client, logger *zerolog.Logger) *worker.PayoutPoller {
	if len(cfg.Worker.PayoutOwners) == 0 {
		return nil
	}

	interval := time.Duration(cfg.Worker.PayoutPollSeconds) * time.Second
	poller := worker.NewPayoutPoller(backendClient, cfg.Worker.PayoutOwners, interval, logging.Component(logger, "payouts"))
	go poller.Start(ctx)
	return poller
}

func startSheetsWorker(ctx context.Context, cfg *config.Config, backendClient *backend.Client, redisClient *redis.Client, logger *zerolog.Logger) *worker.SheetsWorker {
	if !cfg.Worker.SheetsEnabled {
		return nil
	}
	if cfg.Google.CredentialsFile == "" || cfg.Google.PaymentsSpreadsheetID == "" {
		logger.Warn().Msg("sheets sync enabled but google config is incomplete, skipping")
		return nil
	}

	sheetsService, err := google.NewSheetsService(
		cfg.Google.CredentialsFile,
		cfg.Google.PaymentsSpreadsheetID,
		cfg.Google.BookingsSpreadsheetID,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sync")
		return nil
	}

	w := worker.NewSheetsWorker(backendClient, sheetsService, redisClient, worker.DefaultRetryPolicy(), logging.Component(logger, "sheets"))
	go w.Start(ctx)
	logger.Info().Msg("google sheets sync enabled")
	return w
}
