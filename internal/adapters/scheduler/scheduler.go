// Package scheduler runs the recurring price refresh job. It owns its timer
// state explicitly: Start arms the cron schedule (replacing any previous
// one), Stop cancels the timer without interrupting an in-flight run.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/xsmartbartx/system-rezerwacji/pkg/logger"
)

// DefaultSpec fires every 6 hours.
const DefaultSpec = "0 */6 * * *"

// Job is the unit of work the scheduler triggers.
type Job func(ctx context.Context)

// Scheduler arms a cron schedule around a single job.
type Scheduler struct {
	mu sync.Mutex

	spec      string
	job       Job
	immediate bool
	cron      *cron.Cron

	logger logger.Logger
}

// New creates a Scheduler for job. By default it uses DefaultSpec and runs
// the job once immediately on Start.
func New(job Job, opts ...Option) *Scheduler {
	s := &Scheduler{
		spec:      DefaultSpec,
		job:       job,
		immediate: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start arms the schedule. A previously armed schedule is stopped first, so
// there is never more than one live timer per Scheduler. The provided ctx is
// passed to every triggered run and cancels scheduled work when done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.logger == nil {
		s.logger = logger.Get().Named("scheduler")
	}

	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() {
		if ctx.Err() != nil {
			return
		}
		s.job(ctx)
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}

	if s.immediate {
		go s.job(ctx)
	}

	c.Start()
	s.cron = c
	s.logger.Info(ctx, "schedule armed", logger.String("spec", s.spec))

	return nil
}

// Stop cancels the timer. An in-flight run is left to complete; only future
// triggers are suppressed.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}
	s.cron.Stop()
	s.cron = nil
}
