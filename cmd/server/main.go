package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eatsapp/order-service/internal/auth"
	"github.com/eatsapp/order-service/internal/catalog"
	"github.com/eatsapp/order-service/internal/config"
	"github.com/eatsapp/order-service/internal/events"
	"github.com/eatsapp/order-service/internal/order"
	"github.com/eatsapp/order-service/internal/review"
	"github.com/eatsapp/order-service/pkg/accesslog"
	"github.com/eatsapp/order-service/pkg/limiter"
	"github.com/eatsapp/order-service/pkg/logger"
	"github.com/eatsapp/order-service/pkg/unzip"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nanmu42/gzip"
	"github.com/redis/go-redis/v9"
	sqldblogger "github.com/simukti/sqldb-logger"
)

// Version indicates the current version of the application.
var Version = "1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Server run context.
	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	// Load application configurations.
	cfg := config.MustLoad()

	// Create root logger tagged with server version.
	logger := logger.New(cfg).With(serverCtx, "version", Version)

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open the database: %w", err)
	}

	// Log every query to the database.
	db = sqldblogger.OpenDriver(cfg.DSN, db.Driver(), logger)

	// Check connectivity and DSN correctness.
	if err = db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	// Close connection.
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(err)
		}
		_ = logger.Sync()
	}()

	// Create default transaction manager for database/sql package.
	trManager := manager.Must(
		trmsql.NewDefaultFactory(db),
		manager.WithCtxManager(trmcontext.DefaultManager),
	)

	// Review list cache.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err = rdb.Close(); err != nil {
			logger.Error(err)
		}
	}()

	// Order lifecycle event stream.
	publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() {
		if err = publisher.Close(); err != nil {
			logger.Error(err)
		}
	}()

	// Init repository and service for auth.
	authRepo, err := auth.NewRepository(db, logger)
	if err != nil {
		return fmt.Errorf("failed to init auth repository: %w", err)
	}

	authService, err := auth.NewService(authRepo, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to init auth service: %w", err)
	}

	// Read-only catalog access for the order core.
	catalogRepo, err := catalog.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init catalog repository: %w", err)
	}

	// Init repository and service for orders.
	orderRepo, err := order.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init order repository: %w", err)
	}

	orderService, err := order.NewService(
		orderRepo, catalogRepo, publisher, trManager, order.SystemClock{}, logger)
	if err != nil {
		return fmt.Errorf("failed to init order service: %w", err)
	}

	// Init repository and service for reviews.
	reviewRepo, err := review.NewRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init review repository: %w", err)
	}

	reviewService, err := review.NewService(
		reviewRepo, orderRepo, review.NewRedisCache(rdb, cfg.Redis.TTL), trManager, logger)
	if err != nil {
		return fmt.Errorf("failed to init review service: %w", err)
	}

	// Create root router.
	router := initRootRouter(logger)

	// Init and group handlers for auth routes.
	auth.HandlerWithOptions(authService, auth.ChiServerOptions{
		BaseURL:          "/api/auth",
		BaseRouter:       router,
		ErrorHandlerFunc: auth.ErrorHandlerFunc,
		Limiter:          limiter.NewDynamicRateLimiter(cfg.RateLimit.Interval, cfg.RateLimit.Burst),
	})

	// Init handlers for order routes.
	order.NewController(orderService, logger, order.ChiServerOptions{
		BaseURL:     "/api",
		BaseRouter:  router,
		Middlewares: []order.MiddlewareFunc{authService.Middleware},
	})

	// Init handlers for review routes.
	review.NewController(reviewService, logger, review.ChiServerOptions{
		BaseURL:     "/api",
		BaseRouter:  router,
		Middlewares: []review.MiddlewareFunc{authService.Middleware},
	})

	// Build HTTP server.
	hs := &http.Server{
		Addr:              cfg.HTTPServer.Address,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:       cfg.HTTPServer.IdleTimeout,
		Handler:           router,
	}

	// Graceful shutdown.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT,
			syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)

		received := <-sig

		logger.With(serverCtx, "signal", received.String()).
			Infof("Shutting down server with %s timeout",
				cfg.HTTPServer.ShutdownTimeout)

		if err = hs.Shutdown(serverCtx); err != nil {
			logger.Errorf("graceful shutdown failed: %s", err)
		}
		serverStopCtx()
	}()

	// Start the HTTP server with graceful shutdown.
	logger.Infof("Server %v is running at %v", Version, cfg.HTTPServer.Address)
	if err = hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("run server failed: %w", err)
	}

	// Wait for server context to be stopped or force exit if timeout exceeded.
	select {
	case <-serverCtx.Done():
	case <-time.After(cfg.HTTPServer.ShutdownTimeout):
		return errors.New("graceful shutdown timed out.. forcing exit")
	}

	return nil
}

func initRootRouter(logger logger.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(accesslog.Handler(logger))
	router.Use(middleware.Recoverer)
	router.Use(gzip.DefaultHandler().WrapHandler)
	router.Use(unzip.Middleware(logger))

	return router
}
