// Package scheduler runs the periodic stale-sweep over the forecast cache,
// the server-side analog of a browser tab regaining focus.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/Mananajo65/Andaaz-Decorations/engine"
	"github.com/Mananajo65/Andaaz-Decorations/internal/logger"
)

const sweepTimeout = 60 * time.Second

// Sweeper periodically refreshes stale cache entries so a panel rendered
// after a quiet stretch still draws recent data.
type Sweeper struct {
	scheduler *gocron.Scheduler
	orch      *engine.Orchestrator
	interval  time.Duration
}

// New creates a Sweeper. An interval of zero disables it.
func New(orch *engine.Orchestrator, interval time.Duration) *Sweeper {
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		orch:      orch,
		interval:  interval,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Sweeper) Start() error {
	if s.interval <= 0 {
		logger.Info("Stale sweep disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		triggered := s.orch.RefreshStale(ctx)
		logger.Debug("Stale sweep pass complete, %d refresh(es) triggered", triggered)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	logger.Info("Stale sweep scheduled every %d minute(s)", minutes)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Sweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
