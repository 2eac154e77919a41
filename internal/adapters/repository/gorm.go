package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xsmartbartx/system-rezerwacji/internal/domain/dates"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/model"
	"github.com/xsmartbartx/system-rezerwacji/pkg/metrics"
)

// GormStore implements Store on top of a gorm.DB handle. Concurrent upserts
// on the same (property_id, date) key resolve last-writer-wins through the
// database's own conflict handling.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore wraps an existing database handle.
func NewGormStore(db *gorm.DB, opts ...GormOption) *GormStore {
	s := &GormStore{
		db:  db,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Open connects to the configured database and migrates the pricing tables.
// driver is "postgres" or "sqlite"; dsn is driver-specific (a connection
// string, or a file path / ":memory:" for sqlite).
func Open(ctx context.Context, driver, dsn string, opts ...GormOption) (*GormStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	// The catalog schema is owned by the booking platform; the engine only
	// mirrors it, so no foreign key constraints are created here.
	db, err := gorm.Open(dialector, &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(
		&model.Property{},
		&model.Booking{},
		&model.SpecialEvent{},
		&model.DynamicPrice{},
	); err != nil {
		return nil, fmt.Errorf("migrate pricing tables: %w", err)
	}

	return NewGormStore(db, opts...), nil
}

// DB exposes the underlying handle for seeding and tests.
func (s *GormStore) DB() *gorm.DB { return s.db }

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Properties returns every listed property.
func (s *GormStore) Properties(ctx context.Context) ([]model.Property, error) {
	defer observeQuery(time.Now())

	var props []model.Property
	if err := s.db.WithContext(ctx).Order("id").Find(&props).Error; err != nil {
		return nil, unavailable("list properties", err)
	}
	return props, nil
}

// Property returns a single property by id.
func (s *GormStore) Property(ctx context.Context, id string) (model.Property, error) {
	defer observeQuery(time.Now())

	var prop model.Property
	err := s.db.WithContext(ctx).First(&prop, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Property{}, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Property{}, unavailable("get property", err)
	}
	return prop, nil
}

// ActiveBookings returns non-cancelled bookings intersecting [from, to].
func (s *GormStore) ActiveBookings(ctx context.Context, propertyID string, from, to time.Time) ([]model.Booking, error) {
	defer observeQuery(time.Now())

	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status <> ?", model.BookingCancelled).
		Where("start_date <= ? AND end_date >= ?", dates.Day(to), dates.Day(from)).
		Find(&bookings).Error
	if err != nil {
		return nil, unavailable("list bookings", err)
	}
	return bookings, nil
}

// PeakEventImpact returns the highest impact factor covering day, or 1.0.
func (s *GormStore) PeakEventImpact(ctx context.Context, day time.Time) (float64, error) {
	defer observeQuery(time.Now())

	day = dates.Day(day)
	var event model.SpecialEvent
	err := s.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Order("impact_factor DESC").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1.0, nil
	}
	if err != nil {
		return 0, unavailable("list special events", err)
	}
	return event.ImpactFactor, nil
}

// UpsertPrice inserts or overwrites the price keyed by (PropertyID, Date).
func (s *GormStore) UpsertPrice(ctx context.Context, price model.DynamicPrice) error {
	defer observeQuery(time.Now())

	price.Date = dates.Day(price.Date)
	if price.UpdatedAt.IsZero() {
		price.UpdatedAt = s.now().UTC()
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "property_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
		}).
		Create(&price).Error
	if err != nil {
		return unavailable("upsert dynamic price", err)
	}
	return nil
}

// Price returns the stored price for one property and date.
func (s *GormStore) Price(ctx context.Context, propertyID string, day time.Time) (model.DynamicPrice, error) {
	defer observeQuery(time.Now())

	var price model.DynamicPrice
	err := s.db.WithContext(ctx).
		First(&price, "property_id = ? AND date = ?", propertyID, dates.Day(day)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DynamicPrice{}, fmt.Errorf("price for %s on %s: %w",
			propertyID, dates.Day(day).Format(time.DateOnly), ErrNotFound)
	}
	if err != nil {
		return model.DynamicPrice{}, unavailable("get dynamic price", err)
	}
	return price, nil
}

// Prices returns the stored prices for a property within [from, to].
func (s *GormStore) Prices(ctx context.Context, propertyID string, from, to time.Time) ([]model.DynamicPrice, error) {
	defer observeQuery(time.Now())

	var prices []model.DynamicPrice
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("date >= ? AND date <= ?", dates.Day(from), dates.Day(to)).
		Order("date").
		Find(&prices).Error
	if err != nil {
		return nil, unavailable("list dynamic prices", err)
	}
	return prices, nil
}

// Analytics aggregates min/avg/max over every stored price of a property.
func (s *GormStore) Analytics(ctx context.Context, propertyID string) (PriceAnalytics, error) {
	defer observeQuery(time.Now())

	var out PriceAnalytics
	err := s.db.WithContext(ctx).
		Model(&model.DynamicPrice{}).
		Select("COALESCE(MIN(price), 0) AS min, COALESCE(MAX(price), 0) AS max, COALESCE(AVG(price), 0) AS avg, COUNT(*) AS count").
		Where("property_id = ?", propertyID).
		Scan(&out).Error
	if err != nil {
		return PriceAnalytics{}, unavailable("price analytics", err)
	}
	return out, nil
}

// unavailable wraps a database error with the ErrUnavailable sentinel.
func unavailable(op string, err error) error {
	metrics.RecordRepositoryError()
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
}
