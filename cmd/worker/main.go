package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/railmap/internal/adapters/nats"
	"github.com/samirrijal/railmap/internal/adapters/postgres"
	"github.com/samirrijal/railmap/internal/adapters/valkey"
	"github.com/samirrijal/railmap/internal/core/ports"
	"github.com/samirrijal/railmap/internal/core/usecases"
	"github.com/samirrijal/railmap/internal/pkg/config"
	"github.com/samirrijal/railmap/internal/pkg/logging"
	"github.com/samirrijal/railmap/internal/pkg/telemetry"
	"github.com/samirrijal/railmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("railmap-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	var cache ports.CacheService
	vc, err := valkey.New(cfg.Valkey.Addr, "railmap")
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	// The workflow's publish step must reach NATS, so it is required here.
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	layouts := usecases.NewLayoutService(postgres.NewLayoutRepo(db), cache, pub, usecases.LayoutOptions{
		Tolerances:      cfg.Geometry.Tolerances(),
		MarkerSpacing:   cfg.Layout.MarkerSpacing,
		MarkerRefPrefix: cfg.Layout.MarkerRefPrefix,
		MarkerRefStart:  cfg.Layout.MarkerRefStart,
		CacheTTL:        cfg.Layout.CacheTTL,
		Board:           cfg.Board.Transform(),
	})

	// Layouts deleted through any instance drop out of the shared cache.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "layout-cache-evictor")
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()
	if err := layouts.EvictOnDelete(ctx, sub); err != nil {
		log.Fatalf("subscribe layout events: %v", err)
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.LayoutWorkflow)
	w.RegisterActivity(&workflows.LayoutActivities{Layouts: layouts})

	slog.Info("layout worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
