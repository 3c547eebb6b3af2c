package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/orders"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/routes"
	"storefront/internal/telemetry"
)

const version = "0.1.0"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, cfg.ServiceName, version)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()
	logger.Info("connected to MongoDB", "database", cfg.MongoDB)

	breaker := repository.NewBreaker(repository.DefaultBreakerSettings(), logger)
	store := repository.NewStore(client.Database(cfg.MongoDB), breaker)
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	var c cache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer func() { _ = rdb.Close() }()
		c = cache.NewRedis(rdb, cfg.ServiceName)
		logger.Info("using redis cache", "addr", cfg.RedisAddr)
	} else {
		c = cache.NewMemory(ctx, time.Minute)
		logger.Info("using in-memory cache")
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderTopic)
		logger.Info("publishing order events", "topic", cfg.OrderTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("publisher close failed", "error", err)
		}
	}()

	calculator := pricing.NewCalculator(pricing.Rules{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFee:           cfg.ShippingFee,
	})
	pager := catalog.NewPager(cfg.DefaultPageSize, cfg.MaxPageSize)

	catalogService := catalog.NewService(store.Products, store.Categories, pager, c, cfg.CacheTTL, logger)
	cartService := cart.NewService(store.Carts, store.Products, store.Coupons, calculator, logger)
	orderService := orders.NewService(store.Orders, store.Carts, store.Products, catalogService, publisher, calculator, logger)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	routes.RegisterRoutes(router, routes.Deps{
		Catalog:        catalogService,
		Carts:          cartService,
		Orders:         orderService,
		Ping:           func(ctx context.Context) error { return database.Ping(ctx, client) },
		Metrics:        metrics.NewServerMetrics(cfg.ServiceName),
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server running", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
