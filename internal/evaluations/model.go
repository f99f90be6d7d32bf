package evaluations

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an evaluation.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// ParseStatus validates an evaluation status.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusDraft, StatusActive, StatusArchived:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown evaluation status %q", ErrInvalidInput, raw)
	}
}

// Evaluation is a questionnaire sent to one or more vendors.
type Evaluation struct {
	ID          string    `json:"evaluation_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Question belongs to exactly one evaluation. RecommendationText, when set,
// is copied into a recommendation whenever a vendor answers No or N/A.
type Question struct {
	ID                 string    `json:"question_id"`
	EvaluationID       string    `json:"evaluation_id"`
	Text               string    `json:"text"`
	Category           string    `json:"category"`
	Required           bool      `json:"required"`
	Weight             float64   `json:"weight"`
	RecommendationText *string   `json:"recommendation_text"`
	Position           int       `json:"position"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AssignmentStatus tracks a vendor's progress on an evaluation. It only
// moves forward: pending, in_progress, completed.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
)

func (s AssignmentStatus) rank() int {
	switch s {
	case AssignmentPending:
		return 0
	case AssignmentInProgress:
		return 1
	case AssignmentCompleted:
		return 2
	default:
		return -1
	}
}

// ParseAssignmentStatus validates an assignment status.
func ParseAssignmentStatus(raw string) (AssignmentStatus, error) {
	s := AssignmentStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s.rank() < 0 {
		return "", fmt.Errorf("%w: unknown assignment status %q", ErrInvalidInput, raw)
	}
	return s, nil
}

// Assignment links a vendor to an evaluation.
type Assignment struct {
	EvaluationID string           `json:"evaluation_id"`
	VendorID     string           `json:"vendor_id"`
	Status       AssignmentStatus `json:"status"`
	AssignedAt   time.Time        `json:"assigned_at"`
	CompletedAt  *time.Time       `json:"completed_at"`
}
