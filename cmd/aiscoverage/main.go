package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/johnmartel/AisCoverage/internal/calculator"
	"github.com/johnmartel/AisCoverage/internal/core/config"
	"github.com/johnmartel/AisCoverage/internal/core/coverage"
	"github.com/johnmartel/AisCoverage/internal/core/receivers"
	"github.com/johnmartel/AisCoverage/internal/core/storage"
	"github.com/johnmartel/AisCoverage/internal/feed"
	"github.com/johnmartel/AisCoverage/internal/ingestion"
	"github.com/johnmartel/AisCoverage/internal/observability"
	"github.com/johnmartel/AisCoverage/internal/persistence"
	"github.com/johnmartel/AisCoverage/internal/projection"
	"github.com/johnmartel/AisCoverage/internal/retention"
	"github.com/johnmartel/AisCoverage/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "aiscoverage.yaml", "Path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("Exiting", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// 0. Bootstrap logger until the configured one is known
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// 1. Load Configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(newLogger(cfg.Log))
	slog.Info("Loaded config",
		"grid", cfg.Grid,
		"database", cfg.Database.Type,
		"max_window_hours", cfg.Retention.MaxWindowHours)

	// 2. Data model
	registry, err := receivers.Load(cfg.Receivers.Path)
	if err != nil {
		return err
	}
	slog.Info("Receiver registry loaded", "receivers", registry.Len())

	clock := coverage.NewClock()
	store := coverage.NewStore(coverage.GridSpec{
		LatSize: cfg.Grid.LatSize,
		LonSize: cfg.Grid.LonSize,
	}, clock, registry)
	pipeline := calculator.NewPipeline(store, cfg.Satellite.TimeMargin)

	metrics, err := observability.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	// 3. Persistence: open the backend and restore the latest snapshot
	db, err := persistence.NewDatabaseInstance(cfg.Database.Type)
	if err != nil {
		return err
	}
	defer db.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStartup()
	if err := db.Open(startupCtx, cfg.Database); err != nil {
		return err
	}
	if err := db.CreateDatabase(startupCtx); err != nil {
		return err
	}
	restored, err := persistence.LoadInto(startupCtx, db, store)
	if err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	slog.Info("Snapshot restored", "cells", restored, "backend", cfg.Database.Type)
	cancelStartup()

	// 4. Ingestion
	handler := ingestion.NewHandler(ingestion.Options{
		QueueCapacity:       cfg.Ingestion.QueueCapacity,
		DedupCapacity:       cfg.Ingestion.DedupCapacity,
		Workers:             cfg.Ingestion.Workers,
		DrainTimeout:        cfg.Ingestion.DrainTimeout,
		OverflowLogInterval: cfg.Ingestion.OverflowLogInterval,
	}, ingestion.JSONDecoder{}, clock, pipeline, metrics)
	stats := ingestion.NewStatsReporter(cfg.Ingestion.StatsInterval, handler, store, metrics)
	purger := retention.NewPurger(cfg.Retention.PollInterval, cfg.Retention.MaxWindowHours, clock, store, metrics)

	// 5. HTTP surface
	var health server.HealthChecker
	if hc, ok := db.(storage.HealthChecker); ok {
		health = hc
	}
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), health, metrics.Handler(), cfg.Server.Mode)
	ingestion.NewService(handler, cfg.Server.MaxBodySizeKB).RegisterRoutes(srv.Engine)
	projection.NewService(store, pipeline).RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Workers and persister outlive the signal; Stop drains the intake and the
	// final save must see the flushed buffer.
	handler.Start(context.Background())

	persistCtx, stopPersister := context.WithCancel(context.Background())
	persisterDone := make(chan struct{})
	persister := persistence.NewPersisterService(cfg.Database.PersistenceInterval, db, store, metrics)
	go func() {
		defer close(persisterDone)
		if err := persister.Start(persistCtx); err != nil {
			slog.Error("Persister stopped with error", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return purger.Start(gctx) })
	g.Go(func() error {
		stats.Start(gctx)
		return nil
	})
	if cfg.Feed.NATS.URL != "" {
		sub := feed.NewSubscriber(cfg.Feed.NATS.URL, cfg.Feed.NATS.Subject, handler)
		g.Go(func() error { return sub.Start(gctx) })
	} else {
		slog.Info("NATS feed disabled by config")
	}
	g.Go(func() error { return srv.Run(gctx) })

	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("Service stopped with error", "error", runErr)
	}

	// 7. Shutdown: drain intake, flush dedup buffer, then persist
	slog.Info("Shutting down...")
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.Ingestion.DrainTimeout)
	handler.Stop(drainCtx)
	cancelDrain()

	stopPersister()
	<-persisterDone

	slog.Info("Shutdown complete")
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
