package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vendoreval-backend/internal/responses"
)

func resp(questionID string, answer responses.Answer, value string) responses.Response {
	return responses.Response{QuestionID: questionID, Answer: answer, ResponseValue: value}
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		rs       []responses.Response
		want     int
	}{
		{name: "no required questions", required: nil, want: 100},
		{name: "nothing answered", required: []string{"q1", "q2"}, want: 0},
		{
			name:     "one of three rounds down",
			required: []string{"q1", "q2", "q3"},
			rs:       []responses.Response{resp("q1", responses.AnswerYes, "Yes")},
			want:     33,
		},
		{
			name:     "two of three rounds up",
			required: []string{"q1", "q2", "q3"},
			rs: []responses.Response{
				resp("q1", responses.AnswerYes, "Yes"),
				resp("q2", responses.AnswerNo, "No"),
			},
			want: 67,
		},
		{
			name:     "blank value is unanswered",
			required: []string{"q1", "q2"},
			rs: []responses.Response{
				resp("q1", responses.AnswerUnanswered, "  "),
				resp("q2", responses.AnswerUnanswered, "free text"),
			},
			want: 50,
		},
		{
			name:     "optional answers do not count",
			required: []string{"q1"},
			rs:       []responses.Response{resp("q9", responses.AnswerYes, "Yes")},
			want:     0,
		},
		{
			name:     "duplicate required ids count once",
			required: []string{"q1", "q1"},
			rs:       []responses.Response{resp("q1", responses.AnswerNo, "No")},
			want:     100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Completion(tt.required, tt.rs))
		})
	}
}

func TestCompliance(t *testing.T) {
	questions := []Question{
		{ID: "q1", Required: true, Weight: 3},
		{ID: "q2", Required: true, Weight: 1},
		{ID: "q3", Required: true},
		{ID: "q4", Required: false, Weight: 10},
	}

	assert.Equal(t, 100, Compliance(questions, nil), "nothing scorable")

	rs := []responses.Response{
		resp("q1", responses.AnswerYes, "Yes"),
		resp("q2", responses.AnswerNo, "No"),
		resp("q3", responses.AnswerNotApplicable, "N/A"),
		resp("q4", responses.AnswerNo, "No"),
	}
	assert.Equal(t, 75, Compliance(questions, rs))
}

func TestEvaluate(t *testing.T) {
	questions := []Question{
		{ID: "q1", Required: true},
		{ID: "q2", Required: true},
		{ID: "q3"},
	}
	p := Evaluate(questions, []responses.Response{
		resp("q1", responses.AnswerYes, "Yes"),
		resp("q2", responses.AnswerNo, "No"),
	})
	assert.Equal(t, Progress{Completion: 100, Compliance: 50, RequiredTotal: 2, RequiredAnswered: 2}, p)
	assert.True(t, p.Complete())
}
