package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a unit of background work run by the Scheduler
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler wraps cron-based jobs.
type Scheduler struct {
	cron    *cron.Cron
	logger  *logrus.Logger
	timeout time.Duration
}

// NewScheduler creates a scheduler running in UTC. Each run gets timeout to finish.
func NewScheduler(logger *logrus.Logger, timeout time.Duration) *Scheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:  logger,
		timeout: timeout,
	}
}

// Schedule registers job on a standard cron spec or a descriptor such as "@every 1h".
func (s *Scheduler) Schedule(spec string, job Job) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		s.RunNow(job)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}
	s.logger.WithFields(logrus.Fields{
		"job":  job.Name(),
		"spec": spec,
	}).Info("Scheduled job")
	return id, nil
}

// RunNow runs job once in the calling goroutine and logs the outcome.
func (s *Scheduler) RunNow(job Job) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	entry := s.logger.WithField("job", job.Name())
	if err := job.Run(ctx); err != nil {
		entry.WithError(err).Error("Job failed")
		return
	}
	entry.WithField("duration", time.Since(start)).Debug("Job finished")
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs, up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
