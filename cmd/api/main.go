package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/brainrot-market/market-service/internal/api/http"
	"github.com/brainrot-market/market-service/internal/api/http/handlers"
	"github.com/brainrot-market/market-service/internal/auth"
	"github.com/brainrot-market/market-service/internal/config"
	"github.com/brainrot-market/market-service/internal/events"
	"github.com/brainrot-market/market-service/internal/observability"
	"github.com/brainrot-market/market-service/internal/payment"
	"github.com/brainrot-market/market-service/internal/persistence"
	"github.com/brainrot-market/market-service/internal/repository"
	"github.com/brainrot-market/market-service/internal/service"
	"github.com/brainrot-market/market-service/internal/worker"
	"github.com/brainrot-market/market-service/pkg/retry"
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

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	metrics := observability.NewMetrics(nil)
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	threadRepo := repository.NewThreadRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	siteRepo := repository.NewSiteRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	if !cfg.Stripe.Configured() {
		logger.Warn("stripe secret missing or malformed; checkout sessions disabled")
	}
	if !cfg.PayPal.Configured() {
		logger.Warn("paypal credentials missing; paypal orders disabled")
	}
	stripeClient := payment.NewStripeClient(cfg.Stripe)
	paypalClient := payment.NewPayPalClient(cfg.PayPal,
		payment.NewRedisTokenCache(rdb.Client), logger, retry.DefaultPolicy)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: userRepo,
		Tokens:   tokens,
		Logger:   logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:        userRepo,
		TransactionRepo: transactionRepo,
		Logger:          logger,
	})
	checkoutService := service.NewCheckoutService(service.CheckoutDependencies{
		Stripe:           stripeClient,
		PayPal:           paypalClient,
		PayPalConfigured: cfg.PayPal.Configured(),
		TransactionRepo:  transactionRepo,
		Dispatcher:       dispatcher,
		Logger:           logger,
		Metrics:          metrics,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		UserRepo:        userRepo,
		TransactionRepo: transactionRepo,
		ProductRepo:     productRepo,
		SiteRepo:        siteRepo,
		Dispatcher:      dispatcher,
		Cache:           rdb.Client,
		Logger:          logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	threadService := service.NewThreadService(service.ThreadDependencies{
		ThreadRepo: threadRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo:     productRepo,
		UserRepo:        userRepo,
		TransactionRepo: transactionRepo,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Logger:           logger,
	})

	worker.NewNotificationWorker(notificationRepo, logger).Register(dispatcher)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Checkout:       handlers.NewCheckoutHandler(checkoutService),
		Users:          handlers.NewUsersHandler(authService, userService),
		Admin:          handlers.NewAdminHandler(adminService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Threads:        handlers.NewThreadsHandler(threadService),
		Products:       handlers.NewProductsHandler(productService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
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
