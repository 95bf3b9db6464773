package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quickshop/quickshop/internal/accounts"
	"github.com/quickshop/quickshop/internal/cart"
	"github.com/quickshop/quickshop/internal/catalog"
	"github.com/quickshop/quickshop/internal/config"
	"github.com/quickshop/quickshop/internal/httpx"
	kafkax "github.com/quickshop/quickshop/internal/kafka"
	"github.com/quickshop/quickshop/internal/orders"
	"github.com/quickshop/quickshop/internal/postgres"
	"github.com/quickshop/quickshop/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	if cfg.SeedCatalog {
		if err := postgres.Seed(ctx, db); err != nil {
			logger.Error("catalog seed failed", "error", err)
			os.Exit(1)
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, logger)
	placed.Start(ctx)
	status := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, logger)
	status.Start(ctx)

	// Stores & handlers
	accountRepo := &accounts.Repo{DB: db, BcryptCost: cfg.BcryptCost}
	catalogRepo := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	cartStore := &cart.Store{Redis: rdb}

	router := httpx.NewRouter()
	(&httpx.AuthHandler{Accounts: accountRepo}).Register(router)
	(&httpx.ProductsHandler{Catalog: catalogRepo, Users: accountRepo}).Register(router)
	(&httpx.CartHandler{Carts: cartStore}).Register(router)
	(&httpx.OrdersHandler{
		Orders:         orderRepo,
		Users:          accountRepo,
		Carts:          cartStore,
		PlacedProducer: placed,
		StatusProducer: status,
		Redis:          rdb,
		Service:        cfg.ServiceName,
	}).Register(router)
	(&httpx.HealthHandler{DB: db}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	placed.Close()
	status.Close()
	placed.WaitClosed()
	status.WaitClosed()
}
