package vendors

import "errors"

var (
	// ErrNotFound indicates a vendor was not found.
	ErrNotFound = errors.New("vendor not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
