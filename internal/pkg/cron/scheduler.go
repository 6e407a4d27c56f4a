package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a function run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs until its context ends or Stop is called.
// Runs of the same job never overlap.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []Job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AddJob registers a job. Jobs added after Start are not run.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	slog.Debug("Cron job registered", "name", name, "interval", interval)
}

// Start runs every job once right away and then on its interval.
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

	slog.Debug("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	slog.Debug("Cron scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.executeJob(ctx, job)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.executeJob(ctx, job)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job Job) {
	start := time.Now()
	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
}

// RunOnce runs every job a single time in registration order and returns the first error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	var first error
	for _, job := range jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
