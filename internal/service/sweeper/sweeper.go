// Package sweeper runs the background job that transitions tasks past their
// due date to overdue. By default it fires once a day at a configured hour;
// a fixed interval can be set instead for tests and staging.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskforge-app/taskforge-api/internal/config"
	"github.com/taskforge-app/taskforge-api/internal/store"
)

// Sweeper periodically marks tasks overdue. Each tick is one bulk store
// operation; failures are logged and the next tick proceeds normally, so a
// transient database error never stops the schedule.
type Sweeper struct {
	taskStore  store.TaskStore
	cfg        config.SweeperConfig
	logger     *slog.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	timeFunc   func() time.Time // Injectable for testing
}

// New creates a Sweeper. If logger is nil, a default logger will be used.
func New(taskStore store.TaskStore, cfg config.SweeperConfig, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Sweeper{
		taskStore:  taskStore,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "sweeper")),
		ctx:        ctx,
		cancelFunc: cancel,
		timeFunc:   time.Now,
	}
}

// Start launches the background loop. It returns immediately; the first
// sweep runs at the next scheduled time, not at startup.
func (s *Sweeper) Start() {
	if !s.cfg.Enabled {
		s.logger.Info("overdue sweeper disabled")
		return
	}

	s.wg.Add(1)
	go s.run()

	if s.cfg.IntervalMinutes > 0 {
		s.logger.Info("overdue sweeper started",
			slog.Int("interval_minutes", s.cfg.IntervalMinutes))
	} else {
		s.logger.Info("overdue sweeper started",
			slog.Int("daily_hour", s.cfg.Hour))
	}
}

// Stop gracefully shuts down the sweeper, waiting for an in-flight sweep to
// finish.
func (s *Sweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

// run waits for each scheduled time and sweeps. Timer-based rather than
// ticker-based so the daily schedule tracks wall-clock hours across restarts
// and clock adjustments.
func (s *Sweeper) run() {
	defer s.wg.Done()

	for {
		wait := s.nextWait()
		timer := time.NewTimer(wait)

		select {
		case <-s.ctx.Done():
			timer.Stop()
			return

		case <-timer.C:
			s.Sweep(s.ctx)
		}
	}
}

// nextWait computes the delay until the next sweep: the configured fixed
// interval, or the next occurrence of the daily hour.
func (s *Sweeper) nextWait() time.Duration {
	if s.cfg.IntervalMinutes > 0 {
		return time.Duration(s.cfg.IntervalMinutes) * time.Minute
	}

	now := s.timeFunc()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.Hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Sweep performs one overdue pass, logging the number of tasks transitioned.
// Errors are logged and swallowed: the sweep is retried on the next tick and
// the API must keep serving regardless.
func (s *Sweeper) Sweep(ctx context.Context) {
	count, err := s.taskStore.MarkOverdue(ctx, s.timeFunc().UTC())
	if err != nil {
		s.logger.Error("overdue sweep failed", slog.String("error", err.Error()))
		return
	}

	s.logger.Info("overdue sweep completed", slog.Int64("tasks_marked", count))
}
