// Package scheduler drives periodic polling of post sources and fans
// the events out to concurrent ingest workers.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/RavenB/UnitedTweetAnalyzer/pkg/ingest"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/source"
)

// Scheduler polls every source on a fixed interval and ingests the
// resulting events with a pool of concurrent producers.
type Scheduler struct {
	ingestor *ingest.Ingestor
	sources  []source.Source
	interval time.Duration
	workers  int
	log      *slog.Logger
}

// New creates a scheduler.
func New(ing *ingest.Ingestor, sources []source.Source, interval time.Duration, workers int, log *slog.Logger) *Scheduler {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	if workers <= 0 {
		workers = 4
	}
	return &Scheduler{
		ingestor: ing,
		sources:  sources,
		interval: interval,
		workers:  workers,
		log:      log,
	}
}

// Run starts the poll loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Poll immediately on start.
	s.pollAll(ctx)
	s.log.Info("scheduler running", "interval", s.interval, "workers", s.workers)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.pollAll(ctx)
		}
	}
}

func (s *Scheduler) pollAll(ctx context.Context) {
	total := 0
	for _, src := range s.sources {
		events, err := src.Poll(ctx)
		if err != nil {
			s.log.Warn("source poll failed", "source", src.Name(), "error", err)
			continue
		}
		ingested := s.ingestAll(ctx, events)
		s.log.Info("source polled", "source", src.Name(), "events", len(events), "ingested", ingested)
		total += ingested
	}
	s.log.Debug("poll cycle done", "ingested", total)
}

// ingestAll runs the events through the ingestor from N goroutines
// and returns how many were handled without error (silent drops
// included). Per-event failures are already logged by the ingestor
// and do not stop the batch.
func (s *Scheduler) ingestAll(ctx context.Context, events []source.PostEvent) int {
	if len(events) == 0 {
		return 0
	}

	ch := make(chan source.PostEvent)
	var done int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range ch {
				if err := s.ingestor.Ingest(ctx, ev); err == nil {
					mu.Lock()
					done++
					mu.Unlock()
				}
			}
		}()
	}

	for _, ev := range events {
		select {
		case <-ctx.Done():
			close(ch)
			wg.Wait()
			return int(done)
		case ch <- ev:
		}
	}
	close(ch)
	wg.Wait()
	return int(done)
}
