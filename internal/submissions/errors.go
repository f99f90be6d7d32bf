package submissions

import "errors"

var (
	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotAssigned indicates the vendor is not assigned to the evaluation.
	ErrNotAssigned = errors.New("vendor not assigned to evaluation")

	// ErrAlreadySubmitted rejects edits after final submission.
	ErrAlreadySubmitted = errors.New("evaluation already submitted")

	// ErrIncomplete rejects a submission while required questions are unanswered.
	ErrIncomplete = errors.New("required questions unanswered")
)
