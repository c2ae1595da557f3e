package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-bot/internal/api/http"
	"github.com/spec-kit/helpdesk-bot/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-bot/internal/auth"
	"github.com/spec-kit/helpdesk-bot/internal/bot"
	"github.com/spec-kit/helpdesk-bot/internal/config"
	"github.com/spec-kit/helpdesk-bot/internal/conversation"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
	"github.com/spec-kit/helpdesk-bot/internal/persistence"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
	"github.com/spec-kit/helpdesk-bot/internal/service"
	"github.com/spec-kit/helpdesk-bot/internal/timeutil"
	"github.com/spec-kit/helpdesk-bot/internal/worker"
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

	clock, err := timeutil.New(cfg.Time.Location, metrics)
	if err != nil {
		logger.Fatal("failed to load timezone", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Clock:      clock,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})
	profileService := service.NewProfileService(userRepo, clock, dispatcher, metrics)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal("failed to init telegram api", zap.Error(err))
	}
	api.Debug = cfg.Telegram.Debug
	logger.Info("telegram api authorized", zap.String("bot", api.Self.UserName))

	sender := bot.NewSender(api)

	notifications := service.NewNotificationService(dispatcher, sender, logger, metrics, cfg.Telegram.AdminChatID)
	notifications.RegisterHandlers()

	var convStore conversation.Store
	if redis != nil {
		convStore = conversation.NewRedisStore(redis.Client, cfg.Conversation.TTL())
	} else {
		convStore = conversation.NewMemoryStore()
	}

	allowList := auth.NewAllowList(cfg.Telegram.AdminIDs)

	handler := bot.NewHandler(bot.Dependencies{
		API:      api,
		Sender:   sender,
		Tickets:  ticketService,
		Profiles: profileService,
		Conv:     convStore,
		Allow:    allowList,
		Logger:   logger,
		Metrics:  metrics,
	})
	go handler.Run(ctx, cfg.Telegram.PollTimeoutSeconds)

	if cfg.Sweep.Enabled {
		sweep := worker.NewSweepWorker(convStore, sender, cfg.Sweep.Interval(), cfg.Sweep.IdleThreshold(), logger)
		go sweep.Run(ctx)
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Metrics: handlers.NewMetricsHandler(metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
