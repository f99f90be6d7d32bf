package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vendoreval-backend/internal/evaluations"
	"vendoreval-backend/internal/recommendations"
	"vendoreval-backend/internal/responses"
	"vendoreval-backend/internal/scoring"
	"vendoreval-backend/internal/shared/metrics"
	"vendoreval-backend/internal/shared/telemetry"
)

// Evaluations is the part of the evaluations service submissions use.
type Evaluations interface {
	GetAssignment(ctx context.Context, evaluationID, vendorID string) (evaluations.Assignment, error)
	AdvanceAssignment(ctx context.Context, evaluationID, vendorID string, next evaluations.AssignmentStatus) (evaluations.Assignment, error)
	ListQuestions(ctx context.Context, evaluationID string) ([]evaluations.Question, error)
}

// Reconciler derives recommendations from saved responses.
type Reconciler interface {
	Reconcile(ctx context.Context, evaluationID, vendorID string, batch []responses.Response) (recommendations.Result, error)
}

// Service runs the vendor response workflow: save, reconcile, score, submit.
type Service struct {
	Evaluations Evaluations
	Responses   responses.Repo
	Reconciler  Reconciler
}

// NewService constructs a Service.
func NewService(evals Evaluations, resp responses.Repo, reconciler Reconciler) *Service {
	return &Service{Evaluations: evals, Responses: resp, Reconciler: reconciler}
}

func (s *Service) ready() error {
	if s == nil || s.Evaluations == nil || s.Responses == nil || s.Reconciler == nil {
		return errors.New("submissions service not configured")
	}
	return nil
}

func (s *Service) assignment(ctx context.Context, evaluationID, vendorID string) (evaluations.Assignment, error) {
	assignment, err := s.Evaluations.GetAssignment(ctx, evaluationID, vendorID)
	if err != nil {
		if errors.Is(err, evaluations.ErrAssignmentNotFound) {
			return evaluations.Assignment{}, ErrNotAssigned
		}
		return evaluations.Assignment{}, err
	}
	return assignment, nil
}

// SaveResponses upserts the vendor's answers, reconciles recommendations for
// the saved rows and returns the new progress. Per-item failures are part of
// the result; only request-level problems are returned as errors.
func (s *Service) SaveResponses(ctx context.Context, evaluationID, vendorID string, inputs []Input) (SaveResult, error) {
	if err := s.ready(); err != nil {
		return SaveResult{}, err
	}
	if len(inputs) == 0 {
		return SaveResult{}, fmt.Errorf("%w: no responses given", ErrInvalidInput)
	}
	assignment, err := s.assignment(ctx, evaluationID, vendorID)
	if err != nil {
		return SaveResult{}, err
	}
	if assignment.Status == evaluations.AssignmentCompleted {
		return SaveResult{}, ErrAlreadySubmitted
	}
	questions, err := s.Evaluations.ListQuestions(ctx, evaluationID)
	if err != nil {
		return SaveResult{}, fmt.Errorf("list questions: %w", err)
	}
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	result := SaveResult{
		Total:  len(inputs),
		Saved:  make([]responses.Response, 0, len(inputs)),
		Failed: make([]ItemFailure, 0),
	}
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		questionID := strings.TrimSpace(in.QuestionID)
		switch {
		case questionID == "":
			result.Failed = append(result.Failed, ItemFailure{Reason: "question_id is required"})
			continue
		case !known[questionID]:
			result.Failed = append(result.Failed, ItemFailure{QuestionID: questionID, Reason: "question not in evaluation"})
			continue
		case seen[questionID]:
			result.Failed = append(result.Failed, ItemFailure{QuestionID: questionID, Reason: "duplicate question in request"})
			continue
		}
		seen[questionID] = true
		saved, err := s.Responses.Upsert(ctx, responses.Response{
			EvaluationID:  evaluationID,
			VendorID:      vendorID,
			QuestionID:    questionID,
			Answer:        in.Answer,
			ResponseValue: strings.TrimSpace(in.ResponseValue),
		})
		if err != nil {
			result.Failed = append(result.Failed, ItemFailure{QuestionID: questionID, Reason: "save: " + err.Error()})
			continue
		}
		result.Saved = append(result.Saved, saved)
	}

	if len(result.Saved) > 0 && assignment.Status == evaluations.AssignmentPending {
		if _, err := s.Evaluations.AdvanceAssignment(ctx, evaluationID, vendorID, evaluations.AssignmentInProgress); err != nil {
			telemetry.Warn("submission.advance_failed", map[string]any{
				"evaluation_id": evaluationID,
				"vendor_id":     vendorID,
				"error":         err,
			})
		}
	}

	result.Reconciliation, err = s.Reconciler.Reconcile(ctx, evaluationID, vendorID, result.Saved)
	if err != nil {
		return SaveResult{}, fmt.Errorf("reconcile: %w", err)
	}

	failedRecs := make(map[string]bool, len(result.Reconciliation.SkippedErrors))
	for _, item := range result.Reconciliation.SkippedErrors {
		failedRecs[item.ResponseID] = true
	}
	for _, saved := range result.Saved {
		if !failedRecs[saved.ID] {
			result.Succeeded++
		}
	}
	result.Outcome = deriveOutcome(result.Total, result.Succeeded)

	result.Progress, err = s.progress(ctx, evaluationID, vendorID, questions)
	if err != nil {
		return SaveResult{}, err
	}

	metrics.IncSubmission(string(result.Outcome))
	telemetry.Info("submission.saved", map[string]any{
		"evaluation_id": evaluationID,
		"vendor_id":     vendorID,
		"outcome":       string(result.Outcome),
		"total":         result.Total,
		"succeeded":     result.Succeeded,
		"completion":    result.Progress.Completion,
	})
	return result, nil
}

// ListResponses returns every stored response of the pair.
func (s *Service) ListResponses(ctx context.Context, evaluationID, vendorID string) ([]responses.Response, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.assignment(ctx, evaluationID, vendorID); err != nil {
		return nil, err
	}
	return s.Responses.ListByPair(ctx, evaluationID, vendorID)
}

// Progress computes completion and compliance for the pair.
func (s *Service) Progress(ctx context.Context, evaluationID, vendorID string) (scoring.Progress, error) {
	if err := s.ready(); err != nil {
		return scoring.Progress{}, err
	}
	if _, err := s.assignment(ctx, evaluationID, vendorID); err != nil {
		return scoring.Progress{}, err
	}
	questions, err := s.Evaluations.ListQuestions(ctx, evaluationID)
	if err != nil {
		return scoring.Progress{}, fmt.Errorf("list questions: %w", err)
	}
	return s.progress(ctx, evaluationID, vendorID, questions)
}

func (s *Service) progress(ctx context.Context, evaluationID, vendorID string, questions []evaluations.Question) (scoring.Progress, error) {
	stored, err := s.Responses.ListByPair(ctx, evaluationID, vendorID)
	if err != nil {
		return scoring.Progress{}, fmt.Errorf("list responses: %w", err)
	}
	return scoring.Evaluate(evaluations.ScoringQuestions(questions), stored), nil
}

// Submit finalizes the vendor's answers. It fails with ErrIncomplete unless
// completion is 100; submitting twice returns the completed assignment.
func (s *Service) Submit(ctx context.Context, evaluationID, vendorID string) (SubmitResult, error) {
	progress, err := s.Progress(ctx, evaluationID, vendorID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !progress.Complete() {
		metrics.IncSubmission("incomplete")
		return SubmitResult{Progress: progress}, fmt.Errorf("%w: completion %d%%", ErrIncomplete, progress.Completion)
	}
	assignment, err := s.Evaluations.AdvanceAssignment(ctx, evaluationID, vendorID, evaluations.AssignmentCompleted)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("complete assignment: %w", err)
	}
	metrics.IncSubmission("submitted")
	telemetry.Info("submission.submitted", map[string]any{
		"evaluation_id": evaluationID,
		"vendor_id":     vendorID,
		"compliance":    progress.Compliance,
	})
	return SubmitResult{Assignment: assignment, Progress: progress}, nil
}

// Reconcile re-runs reconciliation over every stored response of the pair,
// picking up remediation text edited since the answers were saved.
func (s *Service) Reconcile(ctx context.Context, evaluationID, vendorID string) (recommendations.Result, error) {
	stored, err := s.ListResponses(ctx, evaluationID, vendorID)
	if err != nil {
		return recommendations.Result{}, err
	}
	return s.Reconciler.Reconcile(ctx, evaluationID, vendorID, stored)
}
