// Package chatcron runs the companion's wall-clock maintenance jobs: aging
// every companion's chat cooldowns once a second (internal/task's Engine
// only ticks while a task is active, but proactive-speech cooldowns must
// keep counting down even when the companion is idle) and periodic upkeep
// like memory pruning. It is grounded on the teacher's cron scheduler
// (internal/cron in the source repo), trimmed from a general job store with
// webhook/agent/message handlers down to the one thing the companion
// actually needs: robfig/cron-driven recurring callbacks.
package chatcron

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a robfig/cron.Cron, logging each job's failures through
// the companion's structured logger instead of letting them vanish into
// cron's internal recover-and-drop behavior.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	started bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger overrides the scheduler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a Scheduler with second-granularity cron expressions enabled
// (so "@every 1s" and "0/5 * * * * *" both parse), matching the precision
// chat cooldown aging needs.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: slog.Default().With("component", "chatcron"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob schedules fn to run on spec (a robfig/cron expression, or an
// "@every <duration>" / "@hourly" style descriptor), identifying it as name
// in logs. A job's own errors are logged and otherwise swallowed — one
// failed aging tick must never stop the scheduler.
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := fn(context.Background()); err != nil {
			s.logger.Warn("chatcron job failed", "job", name, "error", err)
		}
	})
	return err
}

// AddAgingJob is a convenience wrapper for the common case of a job that
// never fails: age is called on every firing of spec with no error to
// report.
func (s *Scheduler) AddAgingJob(spec string, age func()) error {
	return s.AddJob("age-chat-cooldowns", spec, func(context.Context) error {
		age()
		return nil
	})
}

// Start begins running scheduled jobs in the background. It is safe to call
// more than once; only the first call has an effect.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
}

// Stop waits for in-flight jobs to finish and halts further scheduling. ctx
// bounds how long to wait.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
