package pricing

import "errors"

// Sentinel kinds for pricing errors.
var (
	ErrInvalidInput = errors.New("invalid input")
)
