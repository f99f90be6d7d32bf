package responses

import "errors"

var (
	// ErrNotFound indicates a response was not found.
	ErrNotFound = errors.New("response not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
