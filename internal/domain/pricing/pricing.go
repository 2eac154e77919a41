// Package pricing computes demand-driven nightly prices. A price is the
// property's base price scaled by a weighted blend of four demand factors:
// seasonality, day of week, monthly occupancy, and special events.
package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/xsmartbartx/system-rezerwacji/internal/domain/dates"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/model"
)

// Factor values returned by the rule tables.
const (
	factorNeutral  = 1.0
	factorShoulder = 1.1
	factorWeekend  = 1.2
	factorPeak     = 1.3

	highOccupancyRate = 0.8
	midOccupancyRate  = 0.5
)

// DemandFactors holds one multiplier per demand signal for a single
// (property, date) pair.
type DemandFactors struct {
	Seasonality   float64
	DayOfWeek     float64
	Occupancy     float64
	SpecialEvents float64
}

// Weights holds the blend weight for each demand factor. The fields mirror
// DemandFactors one to one.
type Weights struct {
	Seasonality   float64
	DayOfWeek     float64
	Occupancy     float64
	SpecialEvents float64
}

// DefaultWeights returns the production factor weights.
func DefaultWeights() Weights {
	return Weights{
		Seasonality:   0.3,
		DayOfWeek:     0.2,
		Occupancy:     0.3,
		SpecialEvents: 0.2,
	}
}

// Blend reduces the factors to a single multiplier as a weighted sum.
func (w Weights) Blend(f DemandFactors) float64 {
	return w.Seasonality*f.Seasonality +
		w.DayOfWeek*f.DayOfWeek +
		w.Occupancy*f.Occupancy +
		w.SpecialEvents*f.SpecialEvents
}

// SeasonalityFactor rates the calendar month: June through August is high
// season, April, May, September and October are shoulder season.
func SeasonalityFactor(day time.Time) float64 {
	switch day.Month() {
	case time.June, time.July, time.August:
		return factorPeak
	case time.April, time.May, time.September, time.October:
		return factorShoulder
	default:
		return factorNeutral
	}
}

// DayOfWeekFactor applies a weekend premium on Fridays and Saturdays.
func DayOfWeekFactor(day time.Time) float64 {
	switch day.Weekday() {
	case time.Friday, time.Saturday:
		return factorWeekend
	default:
		return factorNeutral
	}
}

// OccupancyFactor maps a monthly occupancy rate to a multiplier.
func OccupancyFactor(rate float64) float64 {
	switch {
	case rate >= highOccupancyRate:
		return factorPeak
	case rate >= midOccupancyRate:
		return factorShoulder
	default:
		return factorNeutral
	}
}

// RoundPrice applies the multiplier and rounds to the nearest integer
// currency unit, half away from zero.
func RoundPrice(basePrice, multiplier float64) int64 {
	return int64(math.Round(basePrice * multiplier))
}

// DemandSource supplies the booking and event data the engine cannot derive
// from the date alone.
type DemandSource interface {
	// ActiveBookings returns non-cancelled bookings for the property whose
	// inclusive [start, end] range intersects [from, to].
	ActiveBookings(ctx context.Context, propertyID string, from, to time.Time) ([]model.Booking, error)

	// PeakEventImpact returns the highest impact factor among special events
	// covering day, or 1.0 when none apply.
	PeakEventImpact(ctx context.Context, day time.Time) (float64, error)
}

// Calculator derives a dynamic nightly price for a property and date.
type Calculator interface {
	Quote(ctx context.Context, propertyID string, basePrice float64, day time.Time) (int64, error)
}

// Engine implements Calculator over a DemandSource.
type Engine struct {
	source  DemandSource
	weights Weights
}

// NewEngine creates an Engine with the default weights.
func NewEngine(source DemandSource, opts ...Option) *Engine {
	e := &Engine{
		source:  source,
		weights: DefaultWeights(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Quote computes the dynamic price for one property on one calendar date.
// It has no side effects; two calls over an unchanged data snapshot return
// the same price.
func (e *Engine) Quote(ctx context.Context, propertyID string, basePrice float64, day time.Time) (int64, error) {
	factors, err := e.Factors(ctx, propertyID, basePrice, day)
	if err != nil {
		return 0, err
	}
	return RoundPrice(basePrice, e.weights.Blend(factors)), nil
}

// Factors resolves all four demand factors for a property and date. Exposed
// separately so the serving layer can explain a price.
func (e *Engine) Factors(ctx context.Context, propertyID string, basePrice float64, day time.Time) (DemandFactors, error) {
	if basePrice <= 0 {
		return DemandFactors{}, fmt.Errorf("%w: base price must be positive, got %v", ErrInvalidInput, basePrice)
	}
	day = dates.Day(day)
	if day.Before(time.Unix(0, 0).UTC()) {
		return DemandFactors{}, fmt.Errorf("%w: date %s precedes epoch", ErrInvalidInput, day.Format(time.DateOnly))
	}

	rate, err := e.occupancyRate(ctx, propertyID, day)
	if err != nil {
		return DemandFactors{}, fmt.Errorf("occupancy for %s: %w", propertyID, err)
	}

	impact, err := e.source.PeakEventImpact(ctx, day)
	if err != nil {
		return DemandFactors{}, fmt.Errorf("special events for %s: %w", day.Format(time.DateOnly), err)
	}

	return DemandFactors{
		Seasonality:   SeasonalityFactor(day),
		DayOfWeek:     DayOfWeekFactor(day),
		Occupancy:     OccupancyFactor(rate),
		SpecialEvents: impact,
	}, nil
}

// occupancyRate computes the fraction of the month containing day that is
// covered by active bookings for the property. Overlapping bookings count a
// day once; bookings straddling the month contribute only the clamped days.
func (e *Engine) occupancyRate(ctx context.Context, propertyID string, day time.Time) (float64, error) {
	first, last := dates.MonthBounds(day)

	bookings, err := e.source.ActiveBookings(ctx, propertyID, first, last)
	if err != nil {
		return 0, err
	}

	booked := make(map[int]struct{})
	for _, b := range bookings {
		s, end, ok := dates.ClampToMonth(b.StartDate, b.EndDate, day)
		if !ok {
			continue
		}
		for d := s; !d.After(end); d = d.AddDate(0, 0, 1) {
			booked[d.Day()] = struct{}{}
		}
	}

	return float64(len(booked)) / float64(dates.DaysInMonth(day)), nil
}
