// Package model contains the persistence models shared between the pricing
// engine and its repository.
package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Occupies reports whether a booking in this status blocks calendar days.
// Cancelled bookings never count toward occupancy.
func (s BookingStatus) Occupies() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Property is a listed property from the catalog. The pricing engine only
// reads it; Price is the base nightly price the multiplier applies to.
type Property struct {
	ID        string `gorm:"primaryKey"`
	Title     string
	Location  string
	Price     float64 `gorm:"type:decimal(10,2)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the catalog's table naming.
func (Property) TableName() string { return "properties" }

// Booking is a date-range reservation of a property. StartDate and EndDate
// are inclusive calendar dates; StartDate <= EndDate.
type Booking struct {
	ID         string `gorm:"primaryKey"`
	PropertyID string `gorm:"index"`
	Property   *Property `gorm:"foreignKey:PropertyID"`
	StartDate  time.Time `gorm:"type:date"`
	EndDate    time.Time `gorm:"type:date"`
	Status     BookingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName keeps the catalog's table naming.
func (Booking) TableName() string { return "bookings" }

// SpecialEvent is an externally defined date range with a price impact
// multiplier, e.g. a local festival. ImpactFactor is positive, usually >= 1.
type SpecialEvent struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	StartDate    time.Time `gorm:"type:date"`
	EndDate      time.Time `gorm:"type:date"`
	ImpactFactor float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName keeps the catalog's table naming.
func (SpecialEvent) TableName() string { return "special_events" }

// Covers reports whether the event's inclusive date range contains day.
func (e SpecialEvent) Covers(day time.Time) bool {
	return !day.Before(e.StartDate) && !day.After(e.EndDate)
}

// DynamicPrice is a materialized nightly price for one property on one
// calendar date. The pair (PropertyID, Date) is unique; rows are upserted by
// the refresh job and never deleted by the engine.
type DynamicPrice struct {
	PropertyID string    `gorm:"primaryKey"`
	Date       time.Time `gorm:"primaryKey;type:date"`
	Price      int64
	UpdatedAt  time.Time
}

// TableName matches the table the booking screens read price overrides from.
func (DynamicPrice) TableName() string { return "dynamic_pricing" }
