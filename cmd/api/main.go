package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/heraldhq/herald-api/internal/config"
	"github.com/heraldhq/herald-api/internal/email"
	"github.com/heraldhq/herald-api/internal/handler"
	accountHandler "github.com/heraldhq/herald-api/internal/handler/account"
	announcementHandler "github.com/heraldhq/herald-api/internal/handler/announcement"
	authHandler "github.com/heraldhq/herald-api/internal/handler/auth"
	"github.com/heraldhq/herald-api/internal/handler/embedh"
	healthHandler "github.com/heraldhq/herald-api/internal/handler/health"
	themeHandler "github.com/heraldhq/herald-api/internal/handler/theme"
	"github.com/heraldhq/herald-api/internal/middleware"
	"github.com/heraldhq/herald-api/internal/model"
	"github.com/heraldhq/herald-api/internal/repository/postgres"
	"github.com/heraldhq/herald-api/internal/router"
	accountService "github.com/heraldhq/herald-api/internal/service/account"
	announcementService "github.com/heraldhq/herald-api/internal/service/announcement"
	authService "github.com/heraldhq/herald-api/internal/service/auth"
	deliveryService "github.com/heraldhq/herald-api/internal/service/delivery"
	themeService "github.com/heraldhq/herald-api/internal/service/theme"
	"github.com/heraldhq/herald-api/pkg/auth"
	"github.com/heraldhq/herald-api/pkg/messaging"
	redisbroker "github.com/heraldhq/herald-api/pkg/messaging/redis"
	"github.com/heraldhq/herald-api/pkg/metrics"
	"github.com/heraldhq/herald-api/pkg/security"
	"github.com/heraldhq/herald-api/pkg/worker"
)

func main() {
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
	accountRepo := postgres.NewAccountRepository(baseRepo)
	userRepo := postgres.NewUserRepository(baseRepo)
	announcementRepo := postgres.NewAnnouncementRepository(baseRepo)
	themeRepo := postgres.NewThemeRepository(baseRepo)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	m := metrics.NewMetrics("herald", "api")

	emailSvc := email.NewService(cfg.Email, log.Logger)
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(cfg.JWT)

	accountSvc := accountService.NewService(accountRepo, userRepo, themeRepo, outboxRepo, emailSvc, hasher, log.Logger)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	announcementSvc := announcementService.NewService(announcementRepo, themeRepo, accountRepo, outboxRepo, log.Logger)
	themeSvc := themeService.NewService(themeRepo, announcementRepo, accountRepo, outboxRepo, log.Logger)
	deliverySvc := deliveryService.NewService(accountRepo, announcementRepo, themeRepo, cfg.Embed, m, log.Logger)

	embedH, err := embedh.NewHandler(deliverySvc, cfg.Embed, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build embed assets")
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		accountHandler.NewHandler(accountSvc, cfg.Embed.PublicBaseURL),
		authHandler.NewHandler(authSvc),
		announcementHandler.NewHandler(announcementSvc),
		themeHandler.NewHandler(themeSvc),
		embedH,
		healthHandler.NewHandler(db, broker.Client()),
		handler.NewHandler(),
		router.RouterConfig{
			RateLimit:     rate.Limit(100),
			RateBurst:     200,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			MetricsPrefix: "herald_api",
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Invalidate the in-process resolver cache whenever another instance
	// publishes a config change through the outbox relay.
	go subscribeInvalidations(ctx, broker, deliverySvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
}

func subscribeInvalidations(ctx context.Context, broker messaging.Broker, delivery *deliveryService.Service) {
	msgs, err := broker.Subscribe(ctx, worker.EventsChannel)
	if err != nil {
		log.Error().Err(err).Msg("failed to subscribe to event channel")
		return
	}

	for raw := range msgs {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Warn().Err(err).Msg("dropping malformed event")
			continue
		}

		var evt model.ConfigChangedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			log.Warn().Err(err).Str("type", msg.Type).Msg("dropping event with bad payload")
			continue
		}

		delivery.Invalidate(evt.APIKey, evt.AccountID.String())
		log.Debug().
			Str("type", msg.Type).
			Str("account_id", evt.AccountID.String()).
			Msg("resolver cache invalidated")
	}
}
