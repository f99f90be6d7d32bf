package users

import "errors"

var (
	// ErrNotFound indicates a profile was not found.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidInput indicates a profile failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
