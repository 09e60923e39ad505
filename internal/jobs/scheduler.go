// Package jobs runs periodic maintenance tasks in the background.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Task is a unit of background work. The context is cancelled on Stop.
type Task func(ctx context.Context) error

// Scheduler executes registered tasks on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler instance. Overlapping runs of the
// same task are skipped and panics are recovered.
func NewScheduler() *Scheduler {
	logger := cronLogger{logger: log.With().Str("component", "scheduler").Logger()}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers task under name. spec accepts the standard five field
// format and descriptors such as "@every 10m".
func (s *Scheduler) Add(spec, name string, task Task) error {
	_, err := s.cron.AddFunc(spec, func() { s.execute(name, task) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for task %s: %w", spec, name, err)
	}
	log.Info().Str("task", name).Str("schedule", spec).Msg("Scheduled background task")
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	log.Info().Msg("Starting background scheduler...")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running tasks to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped background scheduler.")
}

func (s *Scheduler) execute(name string, task Task) {
	start := time.Now()
	if err := task(s.ctx); err != nil {
		log.Error().Err(err).Str("task", name).Msg("Background task failed")
		return
	}
	log.Debug().Str("task", name).Dur("duration", time.Since(start)).Msg("Background task finished")
}

// cronLogger adapts zerolog to cron's logger interface.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
