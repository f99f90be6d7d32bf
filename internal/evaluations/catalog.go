package evaluations

import (
	"context"
	"errors"

	"vendoreval-backend/internal/recommendations"
	"vendoreval-backend/internal/scoring"
)

// Catalog exposes questions to the reconciliation engine.
type Catalog struct {
	Repo Repo
}

// RemediationText returns the question's remediation text as stored.
func (c Catalog) RemediationText(ctx context.Context, questionID string) (recommendations.RemediationText, error) {
	question, err := c.Repo.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			return recommendations.RemediationText{}, recommendations.ErrQuestionNotFound
		}
		return recommendations.RemediationText{}, err
	}
	return recommendations.RemediationFromPtr(question.RecommendationText), nil
}

// ScoringQuestions projects questions onto the fields scoring uses.
func ScoringQuestions(questions []Question) []scoring.Question {
	out := make([]scoring.Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, scoring.Question{ID: q.ID, Required: q.Required, Weight: q.Weight})
	}
	return out
}

var _ recommendations.QuestionCatalog = Catalog{}
