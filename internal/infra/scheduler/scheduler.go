package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a single poll iteration.
type Job func(ctx context.Context)

// PollScheduler runs a job, waits for the next scheduled time and repeats,
// one iteration at a time, until its context is cancelled.
type PollScheduler struct {
	schedule cron.Schedule
	logger   *logrus.Entry
	now      func() time.Time
}

// NewPollScheduler creates a scheduler that pauses for interval after every
// iteration, whether the iteration succeeded or not.
func NewPollScheduler(interval time.Duration, logger *logrus.Entry) *PollScheduler {
	return NewPollSchedulerWithSchedule(cron.Every(interval), logger)
}

func NewPollSchedulerWithSchedule(schedule cron.Schedule, logger *logrus.Entry) *PollScheduler {
	return &PollScheduler{
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (s *PollScheduler) Run(ctx context.Context, job Job) {
	s.logger.Info("Starting poll scheduler...")
	for {
		if ctx.Err() != nil {
			s.logger.Info("Poll scheduler stopped.")
			return
		}

		s.runOnce(ctx, job)

		next := s.schedule.Next(s.now())
		wait := next.Sub(s.now())
		s.logger.WithField("next_run", next.Format(time.RFC3339)).Debug("Sleeping until next poll")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Poll scheduler stopped.")
			return
		case <-timer.C:
		}
	}
}

// runOnce isolates a panicking iteration so the loop keeps going.
func (s *PollScheduler) runOnce(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			}).Error("Poll iteration panicked")
		}
	}()
	job(ctx)
}
