// Command seed populates the pricing database with demo catalog data:
// properties, bookings over the coming weeks, and a few special events.
// Useful for exercising the refresh job and the read API locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/xsmartbartx/system-rezerwacji/internal/adapters/repository"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/dates"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/model"
)

type seedConfig struct {
	driver     string
	dsn        string
	properties int
	bookings   int
	events     int
	seed       int64
}

var locations = []string{"Warszawa", "Kraków", "Gdańsk", "Zakopane", "Wrocław", "Sopot"}

func main() {
	cfg := parseFlags()

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg.driver, cfg.dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(cfg.seed))
	db := store.DB().WithContext(ctx)
	today := dates.Day(time.Now())

	props := make([]model.Property, 0, cfg.properties)
	for i := 0; i < cfg.properties; i++ {
		props = append(props, model.Property{
			ID:       uuid.New().String(),
			Title:    fmt.Sprintf("Apartment %03d", i+1),
			Location: locations[rng.Intn(len(locations))],
			Price:    float64(80 + rng.Intn(320)),
		})
	}
	if len(props) > 0 {
		if err := db.Create(&props).Error; err != nil {
			fmt.Fprintln(os.Stderr, "seed properties:", err)
			os.Exit(1)
		}
	}

	statuses := []model.BookingStatus{model.BookingPending, model.BookingConfirmed, model.BookingConfirmed, model.BookingCancelled}
	bookings := make([]model.Booking, 0, cfg.bookings)
	for i := 0; i < cfg.bookings; i++ {
		start := today.AddDate(0, 0, rng.Intn(45))
		bookings = append(bookings, model.Booking{
			ID:         uuid.New().String(),
			PropertyID: props[rng.Intn(len(props))].ID,
			StartDate:  start,
			EndDate:    start.AddDate(0, 0, 1+rng.Intn(9)),
			Status:     statuses[rng.Intn(len(statuses))],
		})
	}
	if len(bookings) > 0 {
		if err := db.Create(&bookings).Error; err != nil {
			fmt.Fprintln(os.Stderr, "seed bookings:", err)
			os.Exit(1)
		}
	}

	events := make([]model.SpecialEvent, 0, cfg.events)
	for i := 0; i < cfg.events; i++ {
		start := today.AddDate(0, 0, rng.Intn(40))
		events = append(events, model.SpecialEvent{
			ID:           uuid.New().String(),
			Name:         fmt.Sprintf("Festival %d", i+1),
			StartDate:    start,
			EndDate:      start.AddDate(0, 0, 1+rng.Intn(4)),
			ImpactFactor: 1.0 + float64(rng.Intn(8))/10.0,
		})
	}
	if len(events) > 0 {
		if err := db.Create(&events).Error; err != nil {
			fmt.Fprintln(os.Stderr, "seed special events:", err)
			os.Exit(1)
		}
	}

	fmt.Printf("seeded %d properties, %d bookings, %d special events\n",
		len(props), len(bookings), len(events))
}

func parseFlags() seedConfig {
	var cfg seedConfig

	flag.StringVar(&cfg.driver, "driver", "sqlite", "Database driver (sqlite or postgres)")
	flag.StringVar(&cfg.dsn, "dsn", "rezerwacji.db", "Database DSN or file path")
	flag.IntVar(&cfg.properties, "properties", 10, "Number of properties to create")
	flag.IntVar(&cfg.bookings, "bookings", 60, "Number of bookings to create")
	flag.IntVar(&cfg.events, "events", 5, "Number of special events to create")
	flag.Int64Var(&cfg.seed, "seed", time.Now().UnixNano(), "Random seed")

	flag.Parse()

	return cfg
}
