package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/quickshop/quickshop/internal/config"
	"github.com/quickshop/quickshop/internal/fulfillment"
	kafkax "github.com/quickshop/quickshop/internal/kafka"
	"github.com/quickshop/quickshop/internal/orders"
	"github.com/quickshop/quickshop/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &fulfillment.Service{
		Redis:       rdb,
		Log:         logger,
		ServiceName: cfg.ServiceName + "-fulfillment",
	}

	group := getenv("FULFILLMENT_GROUP", "fulfillment-svc")
	workers := mustAtoi(os.Getenv("FULFILLMENT_WORKERS"), 4)

	placed := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderPlaced, workers, logger)
	status := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderStatusChanged, workers, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return placed.Start(gctx, svc.HandleOrderPlaced) })
	g.Go(func() error { return status.Start(gctx, svc.HandleStatusChanged) })

	logger.Info("fulfillment consumers started", "group", group, "workers", workers)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Info("shutting down consumers")
		cancel()
	case <-gctx.Done():
	}

	if err := g.Wait(); err != nil {
		logger.Error("consumer exited", "error", err)
		os.Exit(1)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
