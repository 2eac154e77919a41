package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrRefreshInProgress is returned when a refresh trigger arrives while
	// a previous run is still in flight.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)
