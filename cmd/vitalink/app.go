package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/vitalink/vitalink-core/internal/aggregation"
	corecfg "github.com/vitalink/vitalink-core/internal/core/config"
	"github.com/vitalink/vitalink-core/internal/core/storage"
	"github.com/vitalink/vitalink-core/internal/core/storage/memory"
	"github.com/vitalink/vitalink-core/internal/core/storage/postgres"
	"github.com/vitalink/vitalink-core/internal/metrics"
	"github.com/vitalink/vitalink-core/internal/migrations"
	"github.com/vitalink/vitalink-core/internal/registry"
	regstorage "github.com/vitalink/vitalink-core/internal/registry/storage"
)

// app holds the wired components shared by the serve and recompute commands.
type app struct {
	cfg *corecfg.Config

	db      *sql.DB // nil for the memory backend
	adapter *postgres.Adapter
	events  storage.EventStore
	buckets storage.BucketStore

	registry *registry.Registry
	redis    *redis.Client
	queue    aggregation.PendingQueue

	promRegistry *prometheus.Registry
	metrics      *metrics.Metrics
	aggregator   *aggregation.Service
}

func newApp(ctx context.Context, cfg *corecfg.Config) (*app, error) {
	a := &app{cfg: cfg}

	// 1. Metrics
	a.promRegistry = prometheus.NewRegistry()
	a.promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.promRegistry)

	// 2. Storage
	if err := a.openStorage(); err != nil {
		a.Close()
		return nil, err
	}

	// 3. Patient registry
	var repo registry.Repository
	switch cfg.Registry.SourceType {
	case "filesystem":
		repo = regstorage.NewFileSystemRepository(cfg.Registry.Path)
	case "postgres":
		repo = regstorage.NewPostgresRepository(a.db)
	default:
		a.Close()
		return nil, fmt.Errorf("unsupported registry source type %q", cfg.Registry.SourceType)
	}
	a.registry = registry.NewRegistryWithCache(repo, cfg.Registry.CacheCapacity)

	// 4. Retry queue
	if cfg.Aggregation.Retry.Enabled {
		switch cfg.Aggregation.Retry.Backend {
		case "redis":
			client, err := aggregation.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.redis = client
			a.queue = aggregation.NewRedisQueue(client, cfg.Redis.KeyPrefix, a.metrics)
		default:
			a.queue = aggregation.NewMemoryQueue()
		}
	}

	// 5. Aggregator
	retry := cfg.Aggregation.Retry
	a.aggregator = aggregation.NewService(a.buckets, a.queue, a.metrics, aggregation.ServiceParameter{
		Concurrency: cfg.Aggregation.Concurrency,
		Retry: aggregation.RetryPolicy{
			BaseBackoff: retry.BaseBackoff,
			MaxBackoff:  retry.MaxBackoff,
			MaxAttempts: retry.MaxAttempts,
			BatchSize:   retry.BatchSize,
		},
	})

	slog.Info("Components initialized",
		"database", cfg.Database.Type,
		"registry", cfg.Registry.SourceType,
		"retry_enabled", retry.Enabled,
		"retry_backend", retry.Backend,
	)
	return a, nil
}

func (a *app) openStorage() error {
	if a.cfg.Database.Type == "memory" {
		slog.Warn("Using in-memory storage; samples and buckets are lost on restart")
		store := memory.NewStore()
		a.events, a.buckets = store, store
		return nil
	}

	db, err := postgres.Open(a.cfg.Database.DSN, a.cfg.Database.MaxOpenConns, a.cfg.Database.MaxIdleConns)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db

	if err := migrations.RunMigrations(db, a.cfg.Database.AutoMigrate); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	adapter, err := postgres.NewAdapter(db)
	if err != nil {
		return err
	}
	a.adapter = adapter
	a.events = adapter
	a.buckets = postgres.NewBucketAdapter(adapter.DB())
	return nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("Failed to close Redis client", "error", err)
		}
	}
	if a.adapter != nil {
		if err := a.adapter.Close(); err != nil {
			slog.Warn("Failed to close database adapter", "error", err)
		}
		return
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}
}
