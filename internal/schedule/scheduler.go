// Package schedule regenerates the site on a fixed interval.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
)

// Scheduler wraps a gocron scheduler for periodic regeneration.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs fn every interval. A run that is still going when the
// next one is due is not overlapped; the next run is rescheduled instead.
// It returns the job ID.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, fn func()) (string, error) {
	if interval <= 0 {
		return "", errors.ConfigError("schedule interval must be positive").
			WithContext("interval", interval.String()).
			Build()
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Info("Executing scheduled job", slog.String("name", name), logfields.Schedule(interval.String()))
			fn()
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryRuntime, "failed to create periodic job").
			WithContext("name", name).
			Build()
	}
	return job.ID().String(), nil
}

// Regenerate schedules trigger every interval until ctx is done. It returns
// after starting the scheduler; the caller must call Stop.
func Regenerate(ctx context.Context, interval time.Duration, trigger func(context.Context)) (*Scheduler, error) {
	s, err := NewScheduler()
	if err != nil {
		return nil, err
	}
	if _, err := s.ScheduleEvery("regenerate", interval, func() {
		if ctx.Err() != nil {
			return
		}
		trigger(ctx)
	}); err != nil {
		_ = s.Stop()
		return nil, err
	}
	s.Start()
	return s, nil
}
