// Package service wires the pricing engine, repository and refresh schedule
// into one lifecycle-managed unit backing the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xsmartbartx/system-rezerwacji/internal/adapters/repository"
	"github.com/xsmartbartx/system-rezerwacji/internal/adapters/scheduler"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/dates"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/model"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/pricing"
	"github.com/xsmartbartx/system-rezerwacji/pkg/logger"
)

// Service owns the pricing engine, its repository and the refresh scheduler.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	engine *pricing.Engine
	sched  *scheduler.Scheduler

	// Configuration
	dbDriver  string
	dbDSN     string
	weights   pricing.Weights
	schedule  string
	immediate bool
	now       func() time.Time

	// State
	started    bool
	refreshing sync.Mutex
	lastReport *RunReport

	// Logging
	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbDriver:  "sqlite",
		dbDSN:     "file::memory:?cache=shared",
		weights:   pricing.DefaultWeights(),
		schedule:  scheduler.DefaultSpec,
		immediate: true,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store, builds the engine and arms the refresh schedule.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("pricing-service")
	}

	s.logger.Info(ctx, "starting pricing service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.dbDriver, s.dbDSN)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
	}

	s.engine = pricing.NewEngine(s.store, pricing.WithWeights(s.weights))
	s.sched = scheduler.New(func(ctx context.Context) {
		if _, err := s.RefreshAll(ctx); err != nil {
			s.logger.Error(ctx, "scheduled refresh failed", logger.Error(err))
		}
	},
		scheduler.WithSpec(s.schedule),
		scheduler.WithImmediate(s.immediate),
		scheduler.WithLogger(s.logger.Named("scheduler")),
	)

	if err := s.sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "pricing service started",
		logger.String("db", s.dbDriver),
		logger.String("schedule", s.schedule),
	)

	return nil
}

// Stop disarms the schedule and closes the store. An in-flight refresh is
// left to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping pricing service...")

	if s.sched != nil {
		s.sched.Stop()
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "pricing service stopped")
}

// Quote computes a fresh dynamic price for one property and date without
// touching the stored price table.
func (s *Service) Quote(ctx context.Context, propertyID string, day time.Time) (int64, error) {
	prop, err := s.store.Property(ctx, propertyID)
	if err != nil {
		return 0, err
	}
	return s.engine.Quote(ctx, prop.ID, prop.Price, day)
}

// PriceOn returns the materialized price for a property on a date together
// with the property itself, so callers can render base-price comparisons.
func (s *Service) PriceOn(ctx context.Context, propertyID string, day time.Time) (model.DynamicPrice, model.Property, error) {
	prop, err := s.store.Property(ctx, propertyID)
	if err != nil {
		return model.DynamicPrice{}, model.Property{}, err
	}
	price, err := s.store.Price(ctx, propertyID, day)
	if err != nil {
		return model.DynamicPrice{}, prop, err
	}
	return price, prop, nil
}

// PriceRange returns the materialized prices for a property between from and
// to inclusive, ordered by date.
func (s *Service) PriceRange(ctx context.Context, propertyID string, from, to time.Time) ([]model.DynamicPrice, error) {
	if _, err := s.store.Property(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.store.Prices(ctx, propertyID, from, to)
}

// Analytics returns min/avg/max over every stored price of a property.
func (s *Service) Analytics(ctx context.Context, propertyID string) (repository.PriceAnalytics, error) {
	if _, err := s.store.Property(ctx, propertyID); err != nil {
		return repository.PriceAnalytics{}, err
	}
	return s.store.Analytics(ctx, propertyID)
}

// LastReport returns the report of the most recent refresh run, or nil when
// none has completed yet.
func (s *Service) LastReport() *RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":  s.started,
		"db":       s.dbDriver,
		"schedule": s.schedule,
	}

	if s.lastReport != nil {
		stats["lastRun"] = s.lastReport.StartedAt
		stats["lastRunAttempted"] = s.lastReport.Attempted
		stats["lastRunSucceeded"] = s.lastReport.Succeeded
		stats["lastRunFailed"] = len(s.lastReport.Failures)
	}

	return stats
}

// horizon returns every date the refresh covers: today through the last day
// of next month, inclusive.
func (s *Service) horizon() []time.Time {
	today := dates.Day(s.now())
	return dates.Range(today, dates.EndOfNextMonth(today))
}
