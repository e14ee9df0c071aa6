package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vitalink/vitalink-core/internal/aggregation"
	corecfg "github.com/vitalink/vitalink-core/internal/core/config"
	"github.com/vitalink/vitalink-core/internal/dedup"
	"github.com/vitalink/vitalink-core/internal/ingestion"
	"github.com/vitalink/vitalink-core/internal/projection"
	"github.com/vitalink/vitalink-core/internal/server"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the aggregation retry scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	// 1. Load Configuration
	cfg, err := corecfg.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	slog.Info("Loaded config", "config", configPath, "mode", cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Storage, registry, retry queue, aggregator
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// 3. Ingestion
	coordinator := ingestion.NewCoordinator(
		a.registry,
		dedup.New(a.events, a.metrics),
		a.aggregator,
		a.metrics,
		ingestion.Parameter{
			ClockSkewTolerance: cfg.Ingestion.ClockSkewTolerance,
			MaxBatchSize:       cfg.Ingestion.MaxBatchSize,
			WorkerCount:        cfg.Ingestion.WorkerCount,
		},
	)
	ingestionHandler := ingestion.NewHandler(coordinator, cfg.Server.MaxBodySizeMB)

	// 4. Projection (summary reads)
	projectionSvc := projection.NewService(a.buckets, a.events, a.registry, a.aggregator, projection.Parameter{
		Concurrency: cfg.Aggregation.Concurrency,
	})

	// 5. HTTP server
	opts := server.Options{
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = a.metrics
		opts.Gatherer = a.promRegistry
		opts.MetricsPath = cfg.Metrics.Path
	}
	srv := server.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), a.db, opts)
	ingestionHandler.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)
	a.aggregator.RegisterRoutes(srv.Engine)

	// 6. Retry scheduler
	var wg sync.WaitGroup
	if cfg.Aggregation.Retry.Enabled {
		scheduler := aggregation.NewRetryScheduler(cfg.Aggregation.Retry.Interval, a.aggregator)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("Retry scheduler stopped with error", "error", err)
			}
		}()
	} else {
		slog.Warn("Aggregation retry disabled by config; failed windows stay stale until re-triggered")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		cancel()
	}

	// The scheduler's final drain still needs the database.
	wg.Wait()
	slog.Info("Shutdown complete")
	return nil
}
