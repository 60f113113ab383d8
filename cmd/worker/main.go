package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/heraldhq/herald-api/internal/config"
	"github.com/heraldhq/herald-api/internal/repository/postgres"
	"github.com/heraldhq/herald-api/pkg/logger"
	redisbroker "github.com/heraldhq/herald-api/pkg/messaging/redis"
	"github.com/heraldhq/herald-api/pkg/metrics"
	"github.com/heraldhq/herald-api/pkg/worker"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	baseRepo := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	workerLogger := logger.NewLogger(nil)
	m := metrics.NewMetrics("herald", "worker")

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.DefaultOutboxProcessorConfig(),
		workerLogger,
		m,
	)
	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, 24*time.Hour, time.Hour, workerLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down worker")
		cancel()
	}()

	// Liveness endpoint for the orchestrator.
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := db.Ping(); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
		if err := http.ListenAndServe(":8081", mux); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()

	go cleanup.Start(ctx)

	log.Info().Msg("starting outbox worker")
	processor.Start(ctx)
}
