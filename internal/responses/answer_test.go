package responses

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	cases := []struct {
		raw  string
		want Answer
	}{
		{raw: "", want: AnswerUnanswered},
		{raw: "Yes", want: AnswerYes},
		{raw: " no ", want: AnswerNo},
		{raw: "N/A", want: AnswerNotApplicable},
		{raw: "na", want: AnswerNotApplicable},
	}
	for _, tc := range cases {
		got, err := ParseAnswer(tc.raw)
		if err != nil {
			t.Fatalf("ParseAnswer(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAnswer(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}

	if _, err := ParseAnswer("maybe"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown answer, got %v", err)
	}
}

func TestAnswerIsNegative(t *testing.T) {
	if AnswerYes.IsNegative() || AnswerUnanswered.IsNegative() {
		t.Fatalf("Yes and Unanswered must not be negative")
	}
	if !AnswerNo.IsNegative() || !AnswerNotApplicable.IsNegative() {
		t.Fatalf("No and N/A must be negative")
	}
}

func TestAnswerJSONNullIsUnanswered(t *testing.T) {
	var payload struct {
		Answer Answer `json:"answer"`
	}
	if err := json.Unmarshal([]byte(`{"answer":null}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Answer != AnswerUnanswered {
		t.Fatalf("expected Unanswered, got %v", payload.Answer)
	}

	payload.Answer = AnswerNotApplicable
	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"answer":"N/A"}` {
		t.Fatalf("unexpected json %s", out)
	}

	payload.Answer = AnswerUnanswered
	out, err = json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"answer":null}` {
		t.Fatalf("unexpected json %s", out)
	}

	if err := json.Unmarshal([]byte(`{"answer":3}`), &payload); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for numeric answer, got %v", err)
	}
}

func TestAnswerScan(t *testing.T) {
	var a Answer
	if err := a.Scan([]byte("No")); err != nil || a != AnswerNo {
		t.Fatalf("scan bytes: %v %v", a, err)
	}
	if err := a.Scan(nil); err != nil || a != AnswerUnanswered {
		t.Fatalf("scan nil: %v %v", a, err)
	}
	if err := a.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	v, err := AnswerUnanswered.Value()
	if err != nil || v != nil {
		t.Fatalf("expected NULL value for Unanswered, got %v %v", v, err)
	}
}
