package sweep_scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/library-lending-engine/internal/lending_engine/service"
)

// Scheduler runs the overdue sweep on a fixed interval
type Scheduler struct {
	sweeper  service.Sweeper
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(sweeper service.Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start sweeps once immediately and then on every tick until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting overdue sweep scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Overdue sweep scheduler stopping")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	started := time.Now()
	updated, err := s.sweeper.SweepOverdues(ctx)
	if err != nil {
		s.logger.Error("Overdue sweep failed", "updated_transactions", updated, "error", err)
		return
	}
	s.logger.Info("Overdue sweep completed", "updated_transactions", updated, "duration", time.Since(started).String())
}
