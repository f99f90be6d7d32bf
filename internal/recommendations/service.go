package recommendations

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service exposes recommendation reads and the vendor status workflow.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Summary counts the recommendations of an evaluation.
type Summary struct {
	EvaluationID string         `json:"evaluation_id"`
	Total        int            `json:"total"`
	ByStatus     map[Status]int `json:"by_status"`
	ByPriority   map[int]int    `json:"by_priority"`
	Open         int            `json:"open"`
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil {
		return errors.New("recommendations service not configured")
	}
	return nil
}

func (s *Service) ListByEvaluation(ctx context.Context, evaluationID string) ([]Recommendation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(evaluationID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByEvaluation(ctx, evaluationID)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]Recommendation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(vendorID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByVendor(ctx, vendorID)
}

func (s *Service) ListByPair(ctx context.Context, evaluationID, vendorID string) ([]Recommendation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(evaluationID) == "" || strings.TrimSpace(vendorID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByPair(ctx, evaluationID, vendorID)
}

func (s *Service) Get(ctx context.Context, recommendationID string) (Recommendation, error) {
	if err := s.ready(); err != nil {
		return Recommendation{}, err
	}
	if strings.TrimSpace(recommendationID) == "" {
		return Recommendation{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, recommendationID)
}

// UpdateStatus moves a recommendation through the vendor workflow. Text,
// priority and assignment are untouched.
func (s *Service) UpdateStatus(ctx context.Context, recommendationID, rawStatus string) (Recommendation, error) {
	if err := s.ready(); err != nil {
		return Recommendation{}, err
	}
	if strings.TrimSpace(recommendationID) == "" {
		return Recommendation{}, ErrInvalidInput
	}
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return Recommendation{}, err
	}
	rec, err := s.Repo.UpdateStatus(ctx, recommendationID, status)
	if err != nil {
		return Recommendation{}, fmt.Errorf("update recommendation status: %w", err)
	}
	return rec, nil
}

// Summary groups an evaluation's recommendations by status and priority.
// Open counts pending and in_progress items.
func (s *Service) Summary(ctx context.Context, evaluationID string) (Summary, error) {
	recs, err := s.ListByEvaluation(ctx, evaluationID)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{
		EvaluationID: evaluationID,
		Total:        len(recs),
		ByStatus: map[Status]int{
			StatusPending:     0,
			StatusInProgress:  0,
			StatusImplemented: 0,
			StatusRejected:    0,
		},
		ByPriority: map[int]int{PriorityHigh: 0, PriorityMedium: 0},
	}
	for _, rec := range recs {
		out.ByStatus[rec.Status]++
		out.ByPriority[rec.Priority]++
		if rec.Status == StatusPending || rec.Status == StatusInProgress {
			out.Open++
		}
	}
	return out, nil
}
