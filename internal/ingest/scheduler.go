package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docradar/docradar/internal/graph"
)

// Scheduler re-ingests and rebuilds the manifest's repositories on a fixed
// interval using a time.Ticker.
type Scheduler struct {
	ingester *Ingester
	engine   *graph.Engine
	manifest *Manifest
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewScheduler creates a scheduler. The interval string is parsed with
// time.ParseDuration (e.g. "4h", "30m", "1h30m").
func NewScheduler(in *Ingester, engine *graph.Engine, manifest *Manifest, interval string, logger *slog.Logger) (*Scheduler, error) {
	d, err := time.ParseDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("invalid ingest schedule %q: %w (use Go duration format: 4h, 30m, etc.)", interval, err)
	}
	if d < 1*time.Minute {
		return nil, fmt.Errorf("ingest interval must be at least 1m, got %s", d)
	}
	return &Scheduler{
		ingester: in,
		engine:   engine,
		manifest: manifest,
		interval: d,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins the scheduling loop. Call Stop() to terminate.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("ingest scheduler started", "interval", s.interval.String())

		for {
			select {
			case <-ticker.C:
				s.runAll(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// RunAll ingests and rebuilds every repository in the manifest once.
func (s *Scheduler) RunAll(ctx context.Context) {
	s.runAll(ctx)
}

func (s *Scheduler) runAll(ctx context.Context) {
	for _, repo := range s.manifest.Repositories {
		r := s.ingester.RunSync(ctx, repo.ID, repo.Root)
		if r.Error != nil {
			s.logger.Error("scheduled ingest failed", "repositoryID", repo.ID, "error", r.Error)
			continue
		}
		s.logger.Info("scheduled ingest completed",
			"repositoryID", repo.ID, "documents", r.DocumentsFound)

		g, err := s.engine.Build(ctx, repo.ID)
		if err != nil {
			s.logger.Error("scheduled rebuild failed", "repositoryID", repo.ID, "error", err)
			continue
		}
		s.logger.Info("scheduled rebuild completed",
			"repositoryID", repo.ID, "nodes", g.Metadata.NodeCount, "edges", g.Metadata.EdgeCount)
	}
}

// Stop halts the scheduler and waits for it to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}
