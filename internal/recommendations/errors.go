package recommendations

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates a recommendation was not found.
	ErrNotFound = errors.New("recommendation not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQuestionNotFound is returned by a QuestionCatalog for unknown question ids.
	ErrQuestionNotFound = errors.New("question not found")
)

// ScopeViolation describes one response that does not belong to the
// reconciliation scope.
type ScopeViolation struct {
	ResponseID   string `json:"response_id"`
	EvaluationID string `json:"evaluation_id"`
	VendorID     string `json:"vendor_id"`
}

// InvalidScopeError rejects a whole reconciliation batch because some
// responses belong to another evaluation/vendor pair.
type InvalidScopeError struct {
	EvaluationID string
	VendorID     string
	Violations   []ScopeViolation
}

func (e *InvalidScopeError) Error() string {
	ids := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		ids = append(ids, v.ResponseID)
	}
	return fmt.Sprintf("responses outside scope evaluation=%s vendor=%s: %s",
		e.EvaluationID, e.VendorID, strings.Join(ids, ","))
}
