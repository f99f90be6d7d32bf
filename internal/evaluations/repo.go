package evaluations

import (
	"context"
	"time"
)

// Repo defines persistence operations for evaluations, their questions and
// vendor assignments.
type Repo interface {
	CreateEvaluation(ctx context.Context, evaluation Evaluation) error
	GetEvaluation(ctx context.Context, evaluationID string) (Evaluation, error)
	ListEvaluations(ctx context.Context) ([]Evaluation, error)
	UpdateEvaluationStatus(ctx context.Context, evaluationID string, status Status) (Evaluation, error)

	CreateQuestion(ctx context.Context, question Question) error
	GetQuestion(ctx context.Context, questionID string) (Question, error)
	ListQuestions(ctx context.Context, evaluationID string) ([]Question, error)
	// UpdateQuestion overwrites text, category, required, weight and
	// recommendation text.
	UpdateQuestion(ctx context.Context, question Question) (Question, error)

	// Assign is idempotent: an existing assignment is returned unchanged.
	Assign(ctx context.Context, assignment Assignment) (Assignment, error)
	GetAssignment(ctx context.Context, evaluationID, vendorID string) (Assignment, error)
	ListAssignmentsByEvaluation(ctx context.Context, evaluationID string) ([]Assignment, error)
	ListAssignmentsByVendor(ctx context.Context, vendorID string) ([]Assignment, error)
	SetAssignmentStatus(ctx context.Context, evaluationID, vendorID string, status AssignmentStatus, completedAt *time.Time) (Assignment, error)
}
