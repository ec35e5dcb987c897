package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/onedream/storefront/config"
	"github.com/onedream/storefront/internal/auth"
	handler "github.com/onedream/storefront/internal/handler/http"
	"github.com/onedream/storefront/internal/metrics"
	"github.com/onedream/storefront/internal/middleware"
	"github.com/onedream/storefront/internal/notify"
	"github.com/onedream/storefront/internal/repository"
	"github.com/onedream/storefront/internal/repository/postgres"
	"github.com/onedream/storefront/internal/service"
	"github.com/onedream/storefront/internal/watcher"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// newLogger creates logger with log level
func newLogger(level string) (*zap.Logger, error) {

	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	return loggerCfg.Build()
}

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// root context cancelled on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Fatal("Error migrating database", zap.Error(err))
	}

	token := auth.NewAuthToken([]byte(cfg.TokenSecret))

	// notification channel: AMQP when configured, log otherwise
	var notifier notify.Notifier
	if cfg.NotifyAMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.NotifyAMQPURL, cfg.NotifyQueue)
		if err != nil {
			logger.Fatal("Error connecting to notification broker", zap.Error(err))
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	// dependency injection
	// orders
	orderRepo := repository.NewOrderRepository(db)
	orderService := service.NewOrderService(orderRepo, logger)
	orderHandler := handler.NewOrderHandler(orderService)

	// bulk operations
	bulkService := service.NewBulkService(orderService)
	adminHandler := handler.NewAdminHandler(orderService, bulkService)

	// review prompts
	promptRepo := repository.NewReviewPromptRepository(db)
	reviewGate := service.NewReviewGate(orderRepo, promptRepo, logger)
	reviewHandler := handler.NewReviewHandler(reviewGate)

	// auth
	authService := service.NewAuthService(token, cfg.OperatorLogin, cfg.OperatorHash)
	authHandler := handler.NewAuthHandler(authService)

	// new-order watcher
	cursorRepo := repository.NewCursorRepository(db)
	orderWatcher := watcher.New(orderRepo, cursorRepo, notifier, logger, cfg.PollInterval)
	go orderWatcher.Run(ctx)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger))
	router.Use(metrics.Middleware)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Post("/api/login", authHandler.LoginOperator())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))

		group.Post("/api/user/orders", orderHandler.CreateOrder())
		group.Get("/api/user/orders", orderHandler.ListUserOrders())
		group.Get("/api/user/orders/{orderID}", orderHandler.GetOrder())
		group.Post("/api/user/orders/{orderID}/review", reviewHandler.SubmitReview())
		group.Get("/api/user/reviews/next", reviewHandler.NextPrompt())
		group.Get("/api/user/reviews/status", reviewHandler.ReviewStatus())
		group.Post("/api/user/reviews/{orderID}/close", reviewHandler.ClosePrompt())

		group.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireOperator)
			admin.Get("/api/admin/orders", adminHandler.ListOrders())
			admin.Patch("/api/admin/orders/{orderID}/status", adminHandler.SetStatus())
			admin.Delete("/api/admin/orders/{orderID}", adminHandler.DeleteOrder())
			admin.Post("/api/admin/orders/status", adminHandler.BulkSetStatus())
			admin.Post("/api/admin/orders/delete", adminHandler.BulkDelete())
		})
	})

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", zap.Error(err))
		}
	}()

	logger.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Error starting server", zap.Error(err))
	}
}
