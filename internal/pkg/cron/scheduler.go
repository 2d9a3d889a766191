package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs each job on its own ticker until the context passed to Start is cancelled.
type Scheduler struct {
	clock   clockwork.Clock
	logger  *zap.Logger
	jobs    []Job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

func NewScheduler(clk clockwork.Clock, log ...*zap.Logger) *Scheduler {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	var base *zap.Logger
	if len(log) > 0 {
		base = log[0]
	}
	return &Scheduler{
		clock:  clk,
		logger: logger.Named(base, "cron"),
	}
}

// AddJob adds a job to the scheduler. Jobs added after Start are not run.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) error {
	if interval <= 0 {
		return fmt.Errorf("cron job %s: interval must be positive", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	s.logger.Info("cron job registered", zap.String("name", name), zap.Duration("interval", interval))
	return nil
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(ctx, job)
	}

	s.logger.Info("cron scheduler started", zap.Int("job_count", len(s.jobs)))
}

// Stop cancels every job and waits for running executions to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.logger.Info("cron scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(ctx, job)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("cron job stopping", zap.String("name", job.Name))
			return
		case <-ticker.Chan():
			s.executeJob(ctx, job)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job Job) {
	start := s.clock.Now()

	if err := job.Fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("cron job failed",
			zap.String("name", job.Name),
			zap.Duration("duration", s.clock.Since(start)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("cron job completed", zap.String("name", job.Name), zap.Duration("duration", s.clock.Since(start)))
}

// RunOnce runs all jobs once and returns their joined errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, job := range jobs {
		if err := job.Fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
		}
	}
	return errors.Join(errs...)
}
