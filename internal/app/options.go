package service

import (
	"time"

	"github.com/xsmartbartx/system-rezerwacji/internal/adapters/repository"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/pricing"
	"github.com/xsmartbartx/system-rezerwacji/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatabase sets the database driver and DSN the service opens on Start.
func WithDatabase(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.dbDriver = driver
		}
		if dsn != "" {
			s.dbDSN = dsn
		}
	}
}

// WithStore injects an already-open store. Tests use this to share an
// in-memory database with the assertions.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWeights overrides the demand factor weights.
func WithWeights(w pricing.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithSchedule sets the cron expression for the refresh job.
func WithSchedule(spec string) Option {
	return func(s *Service) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithImmediateRefresh controls whether a refresh fires right on Start.
func WithImmediateRefresh(immediate bool) Option {
	return func(s *Service) {
		s.immediate = immediate
	}
}

// WithClock overrides the clock used to anchor the refresh horizon.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
