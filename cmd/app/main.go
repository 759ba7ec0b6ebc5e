package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skyresults/api"
	"github.com/Domenick1991/skyresults/config"
	"github.com/Domenick1991/skyresults/internal/bootstrap"
	"github.com/Domenick1991/skyresults/internal/cache"
	"github.com/Domenick1991/skyresults/internal/fallback"
	"github.com/Domenick1991/skyresults/internal/fixtures"
	"github.com/Domenick1991/skyresults/internal/flightapi"
	"github.com/Domenick1991/skyresults/internal/kafka"
	"github.com/Domenick1991/skyresults/internal/repository"
	"github.com/Domenick1991/skyresults/internal/service/booking"
	"github.com/Domenick1991/skyresults/internal/service/search"
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

	var fixtureRepo fixtures.Lister
	if cfg.Fixtures.Source == config.FixturesPostgres {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			slog.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		fixtureRepo = repository.NewFixtureRepository(pool)
	}

	set, err := fixtures.Load(ctx, cfg.Fixtures.Source, fixtureRepo)
	if err != nil {
		slog.Error("load fixtures", "source", cfg.Fixtures.Source, "error", err)
		os.Exit(1)
	}
	slog.Info("fixtures loaded", "source", cfg.Fixtures.Source, "count", set.Len())

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Search.CacheTTLSeconds)*time.Second)
	if err := redisCache.Ping(ctx); err != nil {
		slog.Warn("redis unavailable, cache reads will miss", "error", err)
	}

	client := &flightapi.Client{
		BaseURL:   cfg.Upstream.BaseURL,
		AccessKey: cfg.Upstream.AccessKey,
		Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		Retries:   cfg.Upstream.Retries,
		Backoff:   time.Duration(cfg.Upstream.BackoffMS) * time.Millisecond,
	}

	loc := cfg.Display.Location()
	searchService := search.NewSearchService(client, set, loc,
		search.WithCache(redisCache),
		search.WithPricer(fallback.NewRandomPricer(cfg.Search.MinFallbackPrice, cfg.Search.MaxFallbackPrice)),
		search.WithErrorMasking(cfg.Search.MaskErrors()),
	)

	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer kafkaProducer.Close()
		if err := kafkaProducer.CheckConnection(ctx); err != nil {
			slog.Warn("kafka unavailable, selection events may be lost", "error", err)
		}
		producer = kafkaProducer
	}

	handoffService := booking.NewHandoffService(redisCache, producer, cfg.Kafka.SelectionsTopic,
		time.Duration(cfg.Booking.HandoffTTLMinutes)*time.Minute)

	router := bootstrap.NewRouter(
		api.NewSearchHandler(searchService, handoffService, loc, redisCache, time.Duration(cfg.Search.ResultsTTLMinutes)*time.Minute),
		api.NewBookingHandler(handoffService, redisCache),
	)

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
