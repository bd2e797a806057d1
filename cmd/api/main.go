package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/tunepulse/tunepulse-api/internal/api/http"
	"github.com/tunepulse/tunepulse-api/internal/api/http/handlers"
	"github.com/tunepulse/tunepulse-api/internal/auth"
	"github.com/tunepulse/tunepulse-api/internal/config"
	"github.com/tunepulse/tunepulse-api/internal/credential"
	"github.com/tunepulse/tunepulse-api/internal/events"
	"github.com/tunepulse/tunepulse-api/internal/mail"
	"github.com/tunepulse/tunepulse-api/internal/observability"
	"github.com/tunepulse/tunepulse-api/internal/persistence"
	"github.com/tunepulse/tunepulse-api/internal/ratelimit"
	"github.com/tunepulse/tunepulse-api/internal/repository"
	"github.com/tunepulse/tunepulse-api/internal/service"
	"github.com/tunepulse/tunepulse-api/internal/storage"
	"github.com/tunepulse/tunepulse-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	mailer := mail.NewSMTPMailer(cfg.Mail)
	blobStore := storage.NewImageHost(cfg.Storage)
	issuer := credential.NewIssuer(cfg.Auth.JWTSecret)
	sessions := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	limiter := ratelimit.New(redis.Client, "pwreset",
		cfg.RateLimit.ResetRequestLimit, cfg.RateLimit.ResetRequestWindow())

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	accountService := service.NewAccountService(userRepo, issuer, sessions, dispatcher, limiter, cfg.Auth, cfg.App.BaseURL, logger)
	profileService := service.NewProfileService(userRepo, blobStore, issuer, dispatcher, cfg.Auth, cfg.App.BaseURL, logger)
	ticketService := service.NewTicketService(ticketRepo, dispatcher, logger)
	notificationService := service.NewNotificationService(dispatcher, mailer, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(sessions, userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 8 << 20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Profile:        handlers.NewProfileHandler(profileService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
