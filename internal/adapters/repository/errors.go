package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	// ErrUnavailable marks failures of the underlying data source so callers
	// can distinguish infrastructure faults from domain errors.
	ErrUnavailable = errors.New("data source unavailable")

	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
)
