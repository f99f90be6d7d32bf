package recommendations

import (
	"fmt"
	"strings"
	"time"

	"vendoreval-backend/internal/responses"
)

// Status is the vendor-controlled workflow state of a recommendation.
// Reconciliation never changes it after creation.
type Status string

const (
	StatusPending     Status = "pending"
	StatusInProgress  Status = "in_progress"
	StatusImplemented Status = "implemented"
	StatusRejected    Status = "rejected"
)

// ParseStatus validates a workflow status.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusInProgress, StatusImplemented, StatusRejected:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
}

const (
	PriorityHigh   = 1
	PriorityMedium = 2
)

// PriorityFor derives the priority from a negative answer: No is an active
// deficiency (high), N/A is inapplicability (medium).
func PriorityFor(answer responses.Answer) int {
	if answer == responses.AnswerNo {
		return PriorityHigh
	}
	return PriorityMedium
}

// Recommendation is the remediation item derived from one negative response.
// At most one exists per ResponseID.
type Recommendation struct {
	ID           string    `json:"recommendation_id"`
	ResponseID   string    `json:"response_id"`
	EvaluationID string    `json:"evaluation_id"`
	VendorID     string    `json:"vendor_id"`
	QuestionID   string    `json:"question_id"`
	Text         string    `json:"recommendation_text"`
	Status       Status    `json:"status"`
	Priority     int       `json:"priority"`
	AssignedTo   *string   `json:"assigned_to"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RemediationText is an optional non-empty remediation text. The zero value
// is "absent".
type RemediationText struct {
	text string
	ok   bool
}

// NewRemediationText wraps question text as written. Empty or
// whitespace-only input is absent.
func NewRemediationText(raw string) RemediationText {
	if strings.TrimSpace(raw) == "" {
		return RemediationText{}
	}
	return RemediationText{text: raw, ok: true}
}

// RemediationFromPtr treats a nil pointer as absent.
func RemediationFromPtr(raw *string) RemediationText {
	if raw == nil {
		return RemediationText{}
	}
	return NewRemediationText(*raw)
}

// Get returns the text and whether it is present.
func (r RemediationText) Get() (string, bool) {
	return r.text, r.ok
}
