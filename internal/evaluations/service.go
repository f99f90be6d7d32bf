package evaluations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VendorLookup reports whether a vendor exists.
type VendorLookup interface {
	Exists(ctx context.Context, vendorID string) (bool, error)
}

// Service holds evaluation, question and assignment business rules.
type Service struct {
	Repo    Repo
	Vendors VendorLookup
	Now     func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, vendors VendorLookup) *Service {
	return &Service{Repo: repo, Vendors: vendors}
}

// CreateInput is the payload for a new evaluation.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// QuestionInput is the payload for adding or editing a question. Nil fields
// are left unchanged on edit.
type QuestionInput struct {
	Text               *string  `json:"text"`
	Category           *string  `json:"category"`
	Required           *bool    `json:"required"`
	Weight             *float64 `json:"weight"`
	RecommendationText *string  `json:"recommendation_text"`
	Position           *int     `json:"position"`
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil {
		return errors.New("evaluations service not configured")
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create stores a draft evaluation.
func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (Evaluation, error) {
	if err := s.ready(); err != nil {
		return Evaluation{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Evaluation{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	now := s.now()
	evaluation := Evaluation{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      StatusDraft,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.CreateEvaluation(ctx, evaluation); err != nil {
		return Evaluation{}, err
	}
	return evaluation, nil
}

func (s *Service) Get(ctx context.Context, evaluationID string) (Evaluation, error) {
	if err := s.ready(); err != nil {
		return Evaluation{}, err
	}
	return s.Repo.GetEvaluation(ctx, evaluationID)
}

func (s *Service) List(ctx context.Context) ([]Evaluation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.ListEvaluations(ctx)
}

// ListForVendor returns the evaluations a vendor is assigned to.
func (s *Service) ListForVendor(ctx context.Context, vendorID string) ([]Evaluation, error) {
	assignments, err := s.ListAssignmentsByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	out := make([]Evaluation, 0, len(assignments))
	for _, a := range assignments {
		evaluation, err := s.Repo.GetEvaluation(ctx, a.EvaluationID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, evaluation)
	}
	return out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, evaluationID, rawStatus string) (Evaluation, error) {
	if err := s.ready(); err != nil {
		return Evaluation{}, err
	}
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return Evaluation{}, err
	}
	return s.Repo.UpdateEvaluationStatus(ctx, evaluationID, status)
}

// AddQuestion appends a question. Questions are required with weight 1
// unless stated otherwise.
func (s *Service) AddQuestion(ctx context.Context, evaluationID string, in QuestionInput) (Question, error) {
	if err := s.ready(); err != nil {
		return Question{}, err
	}
	if in.Text == nil || strings.TrimSpace(*in.Text) == "" {
		return Question{}, fmt.Errorf("%w: question text is required", ErrInvalidInput)
	}
	if _, err := s.Repo.GetEvaluation(ctx, evaluationID); err != nil {
		return Question{}, err
	}
	now := s.now()
	question := Question{
		ID:           uuid.NewString(),
		EvaluationID: evaluationID,
		Required:     true,
		Weight:       1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Position == nil {
		existing, err := s.Repo.ListQuestions(ctx, evaluationID)
		if err != nil {
			return Question{}, err
		}
		question.Position = len(existing)
	}
	if err := applyQuestionInput(&question, in); err != nil {
		return Question{}, err
	}
	if err := s.Repo.CreateQuestion(ctx, question); err != nil {
		return Question{}, err
	}
	return question, nil
}

func (s *Service) GetQuestion(ctx context.Context, questionID string) (Question, error) {
	if err := s.ready(); err != nil {
		return Question{}, err
	}
	return s.Repo.GetQuestion(ctx, questionID)
}

func (s *Service) ListQuestions(ctx context.Context, evaluationID string) ([]Question, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.ListQuestions(ctx, evaluationID)
}

// UpdateQuestion edits a question. A new recommendation text only reaches
// existing recommendations on the next reconciliation.
func (s *Service) UpdateQuestion(ctx context.Context, questionID string, in QuestionInput) (Question, error) {
	if err := s.ready(); err != nil {
		return Question{}, err
	}
	question, err := s.Repo.GetQuestion(ctx, questionID)
	if err != nil {
		return Question{}, err
	}
	if err := applyQuestionInput(&question, in); err != nil {
		return Question{}, err
	}
	return s.Repo.UpdateQuestion(ctx, question)
}

func applyQuestionInput(q *Question, in QuestionInput) error {
	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" {
			return fmt.Errorf("%w: question text is required", ErrInvalidInput)
		}
		q.Text = text
	}
	if in.Category != nil {
		q.Category = strings.TrimSpace(*in.Category)
	}
	if in.Required != nil {
		q.Required = *in.Required
	}
	if in.Weight != nil {
		if *in.Weight <= 0 {
			return fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
		}
		q.Weight = *in.Weight
	}
	if in.RecommendationText != nil {
		// Blank text is stored as NULL so "absent" has one representation.
		text := *in.RecommendationText
		if strings.TrimSpace(text) == "" {
			q.RecommendationText = nil
		} else {
			q.RecommendationText = &text
		}
	}
	if in.Position != nil {
		if *in.Position < 0 {
			return fmt.Errorf("%w: position must not be negative", ErrInvalidInput)
		}
		q.Position = *in.Position
	}
	return nil
}

// AssignVendor links a vendor to an evaluation in pending state. Assigning
// twice returns the existing assignment.
func (s *Service) AssignVendor(ctx context.Context, evaluationID, vendorID string) (Assignment, error) {
	if err := s.ready(); err != nil {
		return Assignment{}, err
	}
	vendorID = strings.TrimSpace(vendorID)
	if vendorID == "" {
		return Assignment{}, fmt.Errorf("%w: vendor_id is required", ErrInvalidInput)
	}
	if _, err := s.Repo.GetEvaluation(ctx, evaluationID); err != nil {
		return Assignment{}, err
	}
	if s.Vendors != nil {
		ok, err := s.Vendors.Exists(ctx, vendorID)
		if err != nil {
			return Assignment{}, err
		}
		if !ok {
			return Assignment{}, fmt.Errorf("%w: unknown vendor %s", ErrInvalidInput, vendorID)
		}
	}
	return s.Repo.Assign(ctx, Assignment{
		EvaluationID: evaluationID,
		VendorID:     vendorID,
		Status:       AssignmentPending,
		AssignedAt:   s.now(),
	})
}

func (s *Service) GetAssignment(ctx context.Context, evaluationID, vendorID string) (Assignment, error) {
	if err := s.ready(); err != nil {
		return Assignment{}, err
	}
	return s.Repo.GetAssignment(ctx, evaluationID, vendorID)
}

func (s *Service) ListAssignmentsByEvaluation(ctx context.Context, evaluationID string) ([]Assignment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.ListAssignmentsByEvaluation(ctx, evaluationID)
}

func (s *Service) ListAssignmentsByVendor(ctx context.Context, vendorID string) ([]Assignment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.ListAssignmentsByVendor(ctx, vendorID)
}

// AdvanceAssignment moves an assignment forward. Repeating the current
// status is a no-op and moving backwards fails with ErrInvalidTransition.
func (s *Service) AdvanceAssignment(ctx context.Context, evaluationID, vendorID string, next AssignmentStatus) (Assignment, error) {
	if err := s.ready(); err != nil {
		return Assignment{}, err
	}
	if next.rank() < 0 {
		return Assignment{}, fmt.Errorf("%w: unknown assignment status %q", ErrInvalidInput, next)
	}
	current, err := s.Repo.GetAssignment(ctx, evaluationID, vendorID)
	if err != nil {
		return Assignment{}, err
	}
	switch {
	case next.rank() == current.Status.rank():
		return current, nil
	case next.rank() < current.Status.rank():
		return Assignment{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
	}
	var completedAt *time.Time
	if next == AssignmentCompleted {
		now := s.now()
		completedAt = &now
	}
	return s.Repo.SetAssignmentStatus(ctx, evaluationID, vendorID, next, completedAt)
}
