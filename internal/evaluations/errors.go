package evaluations

import "errors"

var (
	// ErrNotFound indicates an evaluation was not found.
	ErrNotFound = errors.New("evaluation not found")

	// ErrQuestionNotFound indicates a question was not found.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrAssignmentNotFound indicates the vendor is not assigned to the evaluation.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition rejects a status change that moves backwards.
	ErrInvalidTransition = errors.New("invalid status transition")
)
