package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xsmartbartx/system-rezerwacji/internal/domain/model"
	"github.com/xsmartbartx/system-rezerwacji/pkg/logger"
	"github.com/xsmartbartx/system-rezerwacji/pkg/metrics"
)

// Task identifies one (property, date) price materialization.
type Task struct {
	PropertyID string    `json:"property_id"`
	BasePrice  float64   `json:"base_price"`
	Date       time.Time `json:"date"`
}

// TaskFailure records a task that could not be completed.
type TaskFailure struct {
	Task   Task   `json:"task"`
	Reason string `json:"reason"`
}

// RunReport summarizes one refresh run. Failed tasks are reported so the
// caller can retry only that subset via RefreshTasks.
type RunReport struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Properties int           `json:"properties"`
	Attempted  int           `json:"attempted"`
	Succeeded  int           `json:"succeeded"`
	Failures   []TaskFailure `json:"failures,omitempty"`
}

// RefreshAll materializes prices for every property over the rolling
// horizon. At most one run is in flight at a time; a trigger arriving while
// one is running is skipped and reported with ErrRefreshInProgress.
//
// A failed task is captured and the run continues; only an unreadable
// property list aborts the run, since no work can be enumerated without it.
func (s *Service) RefreshAll(ctx context.Context) (*RunReport, error) {
	if !s.refreshing.TryLock() {
		metrics.RecordRefreshSkipped()
		s.logger.Warn(ctx, "refresh trigger skipped, previous run still in flight")
		return nil, ErrRefreshInProgress
	}
	defer s.refreshing.Unlock()

	props, err := s.store.Properties(ctx)
	if err != nil {
		metrics.RecordRefreshFailure()
		return nil, fmt.Errorf("enumerate properties: %w", err)
	}

	tasks := make([]Task, 0, len(props)*32)
	for _, p := range props {
		for _, day := range s.horizon() {
			tasks = append(tasks, Task{PropertyID: p.ID, BasePrice: p.Price, Date: day})
		}
	}

	report := s.runTasks(ctx, tasks)
	report.Properties = len(props)

	metrics.RecordRefreshRun(report.Duration, report.Attempted)
	metrics.UpdatePropertiesTracked(len(props))

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	s.logger.Info(ctx, "refresh run finished",
		logger.Int("properties", report.Properties),
		logger.Int("attempted", report.Attempted),
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", len(report.Failures)),
		logger.Duration("duration", report.Duration),
	)

	return report, ctx.Err()
}

// RefreshTasks reprocesses an explicit task list, typically the failed
// subset of a previous run.
func (s *Service) RefreshTasks(ctx context.Context, tasks []Task) (*RunReport, error) {
	if !s.refreshing.TryLock() {
		metrics.RecordRefreshSkipped()
		return nil, ErrRefreshInProgress
	}
	defer s.refreshing.Unlock()

	return s.runTasks(ctx, tasks), ctx.Err()
}

// runTasks processes tasks sequentially with per-task error capture. Context
// cancellation stops between tasks; completed upserts stay in place.
func (s *Service) runTasks(ctx context.Context, tasks []Task) *RunReport {
	report := &RunReport{StartedAt: s.now().UTC()}
	start := time.Now()

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		report.Attempted++

		if err := s.processTask(ctx, task); err != nil {
			metrics.RecordTaskFailure()
			report.Failures = append(report.Failures, TaskFailure{Task: task, Reason: err.Error()})
			s.logger.Warn(ctx, "refresh task failed",
				logger.String("property", task.PropertyID),
				logger.Time("date", task.Date),
				logger.Error(err),
			)
			continue
		}
		report.Succeeded++
	}

	report.Duration = time.Since(start)
	return report
}

// processTask computes and upserts a single (property, date) price.
func (s *Service) processTask(ctx context.Context, task Task) error {
	quoteStart := time.Now()
	price, err := s.engine.Quote(ctx, task.PropertyID, task.BasePrice, task.Date)
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	metrics.RecordPriceCalculation(float64(time.Since(quoteStart).Microseconds()) / 1000.0)

	if err := s.store.UpsertPrice(ctx, model.DynamicPrice{
		PropertyID: task.PropertyID,
		Date:       task.Date,
		Price:      price,
		UpdatedAt:  s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	metrics.RecordPriceUpsert()

	return nil
}
