// Package scheduler runs periodic jobs in serve mode.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs each registered job on its own ticker.
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger
}

// New creates an empty scheduler.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{logger: logger.With(slog.String("component", "scheduler"))}
}

// Add registers a job. Jobs with a non-positive interval are ignored.
func (s *Scheduler) Add(job Job) {
	if job.Interval <= 0 {
		s.logger.Error("job not scheduled: non-positive interval",
			"job", job.Name, "interval", job.Interval.String())
		return
	}
	s.jobs = append(s.jobs, job)
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.jobs)
}

// Start blocks until ctx is canceled and every job loop has returned.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, job)
		}()
	}
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	log := s.logger.With(slog.String("job", job.Name))
	log.Info("job scheduled", "interval", job.Interval.String())

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("job stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if err := job.Run(ctx); err != nil {
				log.Error("scheduled job failed", "error", err)
				continue
			}
			log.Debug("scheduled job complete", "duration", time.Since(start).String())
		}
	}
}
