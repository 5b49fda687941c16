package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"uavdeconfliction/internal/config"
	"uavdeconfliction/internal/coordinator"
	"uavdeconfliction/internal/db"
	"uavdeconfliction/internal/monitor"
	"uavdeconfliction/internal/rpc"
	"uavdeconfliction/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	// Open DB and apply migrations
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Replay the durable trajectory log into the in-memory engine so the
	// two stay consistent across restarts.
	s, err := store.LoadFromSQLite(ctx, d)
	if err != nil {
		log.Fatalf("load store from sqlite: %v", err)
	}

	liveState := &db.LiveState{DB: d}
	coord := coordinator.New(s, liveState, cfg.Engine.FleetIDs)
	coord.Persist = &db.Persistence{DB: d}
	coord.Generator.TimeResolution = cfg.Engine.TimeResolution
	coord.Detector.SafetyBuffer = cfg.Engine.SafetyBuffer
	coord.Detector.TimeAlignmentTolerance = cfg.Engine.TimeAlignmentTolerance

	bus := monitor.NewBus()
	mon := monitor.New(liveState, bus)
	mon.SafetyBuffer = cfg.Engine.SafetyBuffer
	mon.PollInterval = cfg.Engine.PollInterval
	mon.Hysteresis = cfg.Engine.Hysteresis

	shutdown, err := rpc.StartGRPC(cfg, coord, bus, d)
	if err != nil {
		log.Fatalf("start grpc: %v", err)
	}
	log.Printf("gRPC server listening on %s", cfg.GRPC.Address)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mon.Run(gctx) })
	g.Go(func() error { return runGC(gctx, s, cfg.Engine.GCInterval, cfg.Engine.GCGrace) })

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("background loop error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// runGC periodically evicts committed trajectory samples that have fully
// passed.
func runGC(ctx context.Context, s *store.Store, interval, grace time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.GCBefore(grace)
		}
	}
}
