package scheduler

import "github.com/xsmartbartx/system-rezerwacji/pkg/logger"

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithSpec sets the cron schedule expression.
func WithSpec(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.spec = spec
		}
	}
}

// WithImmediate controls whether the job fires once right on Start.
func WithImmediate(immediate bool) Option {
	return func(s *Scheduler) {
		s.immediate = immediate
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.logger = log
		}
	}
}
