// Package config defines service configuration structures and loading.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, optional YAML file, and environment variables.
// - External errors are wrapped via this package's sentinel errors.
package config

import "github.com/xsmartbartx/system-rezerwacji/internal/adapters/scheduler"

// Weights mirrors pricing.Weights for configuration files.
type Weights struct {
	Seasonality   float64 `koanf:"seasonality"`
	DayOfWeek     float64 `koanf:"day_of_week"`
	Occupancy     float64 `koanf:"occupancy"`
	SpecialEvents float64 `koanf:"special_events"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBDriver selects the database backend: "postgres" or "sqlite".
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the driver-specific connection string.
	DBDSN string `koanf:"db_dsn"`

	// RefreshSchedule is the cron expression for the price refresh job.
	RefreshSchedule string `koanf:"refresh_schedule"`

	// ImmediateRefresh fires one refresh right on startup.
	ImmediateRefresh bool `koanf:"immediate_refresh"`

	// Weights blends the four demand factors.
	Weights Weights `koanf:"weights"`
}

// New creates a Config with production defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		DBDriver:         "sqlite",
		DBDSN:            "rezerwacji.db",
		RefreshSchedule:  scheduler.DefaultSpec,
		ImmediateRefresh: true,
		Weights: Weights{
			Seasonality:   0.3,
			DayOfWeek:     0.2,
			Occupancy:     0.3,
			SpecialEvents: 0.2,
		},
	}
}
