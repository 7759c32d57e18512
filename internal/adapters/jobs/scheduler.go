// Package jobs runs the periodic map sync and build directory maintenance.
package jobs

import (
	"context"
	"fmt"

	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler runs named jobs on cron schedules. A job still running when its next
// activation comes up is skipped, and panics are recovered.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
}

// NewScheduler creates a Scheduler using standard five field cron expressions.
func NewScheduler(log logger.Logger) *Scheduler {
	adapter := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		log: log,
	}
}

// Add registers job under spec. An empty spec disables the job.
func (s *Scheduler) Add(name, spec string, job func(ctx context.Context)) error {
	if spec == "" {
		s.log.Info("Job disabled", logger.WithField("job", name))
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Debug("Running job", logger.WithField("job", name))
		job(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.log.Info("Job scheduled", logger.WithField("job", name), logger.WithField("schedule", spec))
	return nil
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(fields(keysAndValues), logger.WithError(err))...)
}

func fields(keysAndValues []interface{}) []logger.Field {
	out := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out = append(out, logger.WithField(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return out
}
