// Package scoring computes completion and compliance percentages for one
// vendor's responses to an evaluation. Everything here is pure.
package scoring

import (
	"math"
	"strings"

	"vendoreval-backend/internal/responses"
)

// Question is the part of a question that scoring looks at.
type Question struct {
	ID       string
	Required bool
	Weight   float64
}

// Progress is the combined score of a vendor for one evaluation.
type Progress struct {
	Completion       int `json:"completion"`
	Compliance       int `json:"compliance"`
	RequiredTotal    int `json:"required_total"`
	RequiredAnswered int `json:"required_answered"`
}

// Complete reports whether the vendor may submit.
func (p Progress) Complete() bool {
	return p.Completion == 100
}

// Completion returns round(100 * answered / required) where a required
// question counts as answered when its response value is non-empty. With no
// required questions completion is 100.
func Completion(requiredIDs []string, rs []responses.Response) int {
	total, answered := countAnswered(requiredIDs, rs)
	return percent(answered, total)
}

// Compliance is the weighted share of Yes answers among required questions
// answered Yes or No. N/A and unanswered questions are left out; with nothing
// scorable the result is 100.
func Compliance(questions []Question, rs []responses.Response) int {
	answers := make(map[string]responses.Answer, len(rs))
	for _, r := range rs {
		answers[r.QuestionID] = r.Answer
	}
	var yes, scored float64
	for _, q := range questions {
		if !q.Required {
			continue
		}
		w := q.Weight
		if w <= 0 {
			w = 1
		}
		switch answers[q.ID] {
		case responses.AnswerYes:
			yes += w
			scored += w
		case responses.AnswerNo:
			scored += w
		}
	}
	if scored == 0 {
		return 100
	}
	return int(math.Round(100 * yes / scored))
}

// Evaluate computes both scores.
func Evaluate(questions []Question, rs []responses.Response) Progress {
	required := make([]string, 0, len(questions))
	for _, q := range questions {
		if q.Required {
			required = append(required, q.ID)
		}
	}
	total, answered := countAnswered(required, rs)
	return Progress{
		Completion:       percent(answered, total),
		Compliance:       Compliance(questions, rs),
		RequiredTotal:    total,
		RequiredAnswered: answered,
	}
}

func countAnswered(requiredIDs []string, rs []responses.Response) (total, answered int) {
	required := make(map[string]bool, len(requiredIDs))
	for _, id := range requiredIDs {
		required[id] = false
	}
	for _, r := range rs {
		if _, ok := required[r.QuestionID]; ok && strings.TrimSpace(r.ResponseValue) != "" {
			required[r.QuestionID] = true
		}
	}
	for _, done := range required {
		if done {
			answered++
		}
	}
	return len(required), answered
}

func percent(n, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}
