package responses

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Answer is the tri-state answer of a response. The zero value means the
// question was not answered with Yes/No/N/A (for example free-text questions).
type Answer int

const (
	AnswerUnanswered Answer = iota
	AnswerYes
	AnswerNo
	AnswerNotApplicable
)

// ParseAnswer parses the wire form of an answer. Empty input is Unanswered.
func ParseAnswer(raw string) (Answer, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return AnswerUnanswered, nil
	case "yes":
		return AnswerYes, nil
	case "no":
		return AnswerNo, nil
	case "n/a", "na":
		return AnswerNotApplicable, nil
	default:
		return AnswerUnanswered, fmt.Errorf("%w: unknown answer %q", ErrInvalidInput, raw)
	}
}

func (a Answer) String() string {
	switch a {
	case AnswerYes:
		return "Yes"
	case AnswerNo:
		return "No"
	case AnswerNotApplicable:
		return "N/A"
	default:
		return ""
	}
}

// IsNegative reports whether the answer is No or N/A.
func (a Answer) IsNegative() bool {
	return a == AnswerNo || a == AnswerNotApplicable
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a == AnswerUnanswered {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = AnswerUnanswered
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: answer must be a string or null", ErrInvalidInput)
	}
	parsed, err := ParseAnswer(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores Unanswered as NULL.
func (a Answer) Value() (driver.Value, error) {
	if a == AnswerUnanswered {
		return nil, nil
	}
	return a.String(), nil
}

func (a *Answer) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = AnswerUnanswered
		return nil
	case string:
		parsed, err := ParseAnswer(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		parsed, err := ParseAnswer(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	default:
		return fmt.Errorf("scan answer: unsupported type %T", src)
	}
}
