package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skyresults/config"
	"github.com/Domenick1991/skyresults/internal/bootstrap"
	"github.com/Domenick1991/skyresults/internal/kafka"
	"github.com/Domenick1991/skyresults/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	bootstrap.NewLogger(cfg.Log, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.SelectionsTopic)
	if err != nil {
		slog.Error("create selections consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	selections := repository.NewSelectionRepository(pool)

	go func() {
		err := consumer.Consume(ctx, kafka.SelectionHandler(func(ctx context.Context, event kafka.SelectionEvent) error {
			selection := event.Selection()
			if err := selections.Insert(ctx, &selection); err != nil {
				return err
			}
			slog.InfoContext(ctx, "selection recorded", "token", event.Token, "flight", event.FlightIATA)
			return nil
		}))
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("consumer stopped", "error", err)
			stop()
		}
	}()

	purgeTicker := time.NewTicker(time.Duration(cfg.Worker.PurgeIntervalMinutes) * time.Minute)
	defer purgeTicker.Stop()
	retention := time.Duration(cfg.Worker.SelectionRetentionHours) * time.Hour

	for {
		select {
		case <-purgeTicker.C:
			purged, err := selections.PurgeBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				slog.Error("purge selections", "error", err)
				continue
			}
			if purged > 0 {
				slog.Info("purged selections", "count", purged)
			}
		case <-ctx.Done():
			slog.Info("shutting down worker")
			return
		}
	}
}
