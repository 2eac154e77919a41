package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadDate = errors.New("invalid date; must be YYYY-MM-DD")
)
