package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	cartcache "github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/cache"
	cartrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/repository"
	cartservice "github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/service"
	catalogrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/repository"
	catalogservice "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/service"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/config"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/httpapi"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/store"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/publisher"
	orderrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/order/repository"
	orderservice "github.com/ainan-ahmed/EcommForAll-sub001/internal/order/service"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/postgres"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/pricing"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	dbPort, err := strconv.Atoi(cfg.DBPort)
	if err != nil {
		logger.Fatal("invalid POSTGRES_PORT", zap.String("port", cfg.DBPort))
	}
	creds := &postgres.Credentials{
		Host:              cfg.DBHost,
		Port:              dbPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsDir,
	}

	db, err := postgres.Connect(creds)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, creds); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("connected to postgres", zap.String("host", cfg.DBHost))

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog
	catalogRepository := catalogrepo.NewRepository(db)
	priceProducer := pricing.NewProducer(cfg.KafkaBrokers...)
	defer priceProducer.Close()
	catalogSvc := catalogservice.NewCatalogService(catalogRepository, priceProducer, logger)

	priceConsumer := pricing.NewConsumer(catalogRepository, logger, cfg.KafkaBrokers...)
	defer priceConsumer.Close()
	go priceConsumer.Run(ctx)

	// Cart
	cartRepository := cartrepo.NewRepository(db)
	cartCache := cartcache.NewRedisCache(redisClient)
	cartSvc := cartservice.NewCartService(cartRepository, cartCache, catalogSvc, logger)

	// Inventory
	stockLedger := store.NewMemoryStore()
	defer stockLedger.Close()

	// Orders
	collaboratorTimeout := time.Duration(cfg.CollaboratorTimeoutMS) * time.Millisecond
	orderRepository := orderrepo.NewRepository(db)
	orderSvc := orderservice.NewOrderService(
		orderRepository,
		cartSvc,
		orderservice.NewCatalogHandler(catalogSvc, collaboratorTimeout),
		orderservice.NewStockHandler(stockLedger, collaboratorTimeout),
		cfg.TaxRateDecimal(),
		cfg.DefaultShippingDecimal(),
		logger,
	)

	outboxPoller := publisher.NewOutboxPoller(orderRepository, logger, cfg.KafkaBrokers...)
	defer outboxPoller.Close()
	go outboxPoller.Run(ctx)

	router := httpapi.NewRouter(
		httpapi.TokenDirectory{},
		httpapi.NewCartHandler(cartSvc),
		httpapi.NewOrderHandler(orderSvc),
		httpapi.NewCatalogHandler(catalogSvc),
		httpapi.NewInventoryHandler(stockLedger),
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	logger.Info("stopped")
}
