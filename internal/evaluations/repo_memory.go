package evaluations

import (
	"context"
	"sort"
	"sync"
	"time"
)

type assignmentKey struct {
	evaluationID string
	vendorID     string
}

// MemoryRepo stores evaluations in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu          sync.RWMutex
	evaluations map[string]Evaluation
	questions   map[string]Question
	assignments map[assignmentKey]Assignment
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		evaluations: make(map[string]Evaluation),
		questions:   make(map[string]Question),
		assignments: make(map[assignmentKey]Assignment),
	}
}

func (r *MemoryRepo) CreateEvaluation(ctx context.Context, evaluation Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.evaluations[evaluation.ID]; exists {
		return ErrInvalidInput
	}
	r.evaluations[evaluation.ID] = evaluation
	return nil
}

func (r *MemoryRepo) GetEvaluation(ctx context.Context, evaluationID string) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	evaluation, ok := r.evaluations[evaluationID]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	return evaluation, nil
}

func (r *MemoryRepo) ListEvaluations(ctx context.Context) ([]Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Evaluation, 0, len(r.evaluations))
	for _, evaluation := range r.evaluations {
		out = append(out, evaluation)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) UpdateEvaluationStatus(ctx context.Context, evaluationID string, status Status) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	evaluation, ok := r.evaluations[evaluationID]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	evaluation.Status = status
	evaluation.UpdatedAt = time.Now().UTC()
	r.evaluations[evaluationID] = evaluation
	return evaluation, nil
}

func (r *MemoryRepo) CreateQuestion(ctx context.Context, question Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.evaluations[question.EvaluationID]; !ok {
		return ErrNotFound
	}
	if _, exists := r.questions[question.ID]; exists {
		return ErrInvalidInput
	}
	r.questions[question.ID] = question
	return nil
}

func (r *MemoryRepo) GetQuestion(ctx context.Context, questionID string) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	question, ok := r.questions[questionID]
	if !ok {
		return Question{}, ErrQuestionNotFound
	}
	return question, nil
}

// ListQuestions returns the questions of an evaluation by position.
func (r *MemoryRepo) ListQuestions(ctx context.Context, evaluationID string) ([]Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Question, 0)
	for _, question := range r.questions {
		if question.EvaluationID == evaluationID {
			out = append(out, question)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) UpdateQuestion(ctx context.Context, question Question) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.questions[question.ID]
	if !ok {
		return Question{}, ErrQuestionNotFound
	}
	existing.Text = question.Text
	existing.Category = question.Category
	existing.Required = question.Required
	existing.Weight = question.Weight
	existing.RecommendationText = question.RecommendationText
	existing.UpdatedAt = time.Now().UTC()
	r.questions[question.ID] = existing
	return existing, nil
}

func (r *MemoryRepo) Assign(ctx context.Context, assignment Assignment) (Assignment, error) {
	if err := ctx.Err(); err != nil {
		return Assignment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.evaluations[assignment.EvaluationID]; !ok {
		return Assignment{}, ErrNotFound
	}
	key := assignmentKey{assignment.EvaluationID, assignment.VendorID}
	if existing, ok := r.assignments[key]; ok {
		return existing, nil
	}
	r.assignments[key] = assignment
	return assignment, nil
}

func (r *MemoryRepo) GetAssignment(ctx context.Context, evaluationID, vendorID string) (Assignment, error) {
	if err := ctx.Err(); err != nil {
		return Assignment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	assignment, ok := r.assignments[assignmentKey{evaluationID, vendorID}]
	if !ok {
		return Assignment{}, ErrAssignmentNotFound
	}
	return assignment, nil
}

func (r *MemoryRepo) ListAssignmentsByEvaluation(ctx context.Context, evaluationID string) ([]Assignment, error) {
	return r.listAssignments(ctx, func(a Assignment) bool { return a.EvaluationID == evaluationID })
}

func (r *MemoryRepo) ListAssignmentsByVendor(ctx context.Context, vendorID string) ([]Assignment, error) {
	return r.listAssignments(ctx, func(a Assignment) bool { return a.VendorID == vendorID })
}

func (r *MemoryRepo) listAssignments(ctx context.Context, match func(Assignment) bool) ([]Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Assignment, 0)
	for _, assignment := range r.assignments {
		if match(assignment) {
			out = append(out, assignment)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AssignedAt.Equal(out[j].AssignedAt) {
			return out[i].AssignedAt.Before(out[j].AssignedAt)
		}
		if out[i].EvaluationID != out[j].EvaluationID {
			return out[i].EvaluationID < out[j].EvaluationID
		}
		return out[i].VendorID < out[j].VendorID
	})
	return out, nil
}

func (r *MemoryRepo) SetAssignmentStatus(ctx context.Context, evaluationID, vendorID string, status AssignmentStatus, completedAt *time.Time) (Assignment, error) {
	if err := ctx.Err(); err != nil {
		return Assignment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := assignmentKey{evaluationID, vendorID}
	assignment, ok := r.assignments[key]
	if !ok {
		return Assignment{}, ErrAssignmentNotFound
	}
	assignment.Status = status
	assignment.CompletedAt = completedAt
	r.assignments[key] = assignment
	return assignment, nil
}

var _ Repo = (*MemoryRepo)(nil)
