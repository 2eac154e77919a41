package repository

import "time"

// GormOption applies a configuration option to the GormStore.
type GormOption func(*GormStore)

// WithNow overrides the clock used for upsert timestamps. Tests use this to
// pin updated_at values.
func WithNow(now func() time.Time) GormOption {
	return func(s *GormStore) {
		if now != nil {
			s.now = now
		}
	}
}
