// Package repository defines data access for the pricing tables and their
// GORM implementation. The engine reads properties, bookings and special
// events; it exclusively owns writes to dynamic_pricing.
package repository

import (
	"context"
	"time"

	"github.com/xsmartbartx/system-rezerwacji/internal/domain/model"
)

// PriceAnalytics summarizes the stored dynamic prices of one property.
type PriceAnalytics struct {
	Min   int64   `json:"min"`
	Max   int64   `json:"max"`
	Avg   float64 `json:"avg"`
	Count int64   `json:"count"`
}

// Catalog provides read-only access to the catalog tables.
type Catalog interface {
	// Properties returns every listed property.
	Properties(ctx context.Context) ([]model.Property, error)

	// Property returns a single property by id.
	// Returns ErrNotFound when the id is unknown.
	Property(ctx context.Context, id string) (model.Property, error)

	// ActiveBookings returns non-cancelled bookings for the property whose
	// inclusive date range intersects [from, to].
	ActiveBookings(ctx context.Context, propertyID string, from, to time.Time) ([]model.Booking, error)

	// PeakEventImpact returns the highest impact factor among special events
	// covering day, or 1.0 when none apply.
	PeakEventImpact(ctx context.Context, day time.Time) (float64, error)
}

// PriceStore provides read/write access to the dynamic_pricing table.
type PriceStore interface {
	// UpsertPrice inserts or overwrites the price keyed by (PropertyID, Date).
	UpsertPrice(ctx context.Context, price model.DynamicPrice) error

	// Price returns the stored price for one property and date.
	// Returns ErrNotFound when no price has been materialized for the pair.
	Price(ctx context.Context, propertyID string, day time.Time) (model.DynamicPrice, error)

	// Prices returns the stored prices for a property ordered by date,
	// limited to [from, to] inclusive.
	Prices(ctx context.Context, propertyID string, from, to time.Time) ([]model.DynamicPrice, error)

	// Analytics aggregates min/avg/max over every stored price of a property.
	Analytics(ctx context.Context, propertyID string) (PriceAnalytics, error)
}

// Store combines catalog reads with dynamic price persistence.
type Store interface {
	Catalog
	PriceStore
}
