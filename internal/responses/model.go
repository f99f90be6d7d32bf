package responses

import "time"

// Response is a vendor's answer to one question of an evaluation. At most one
// row exists per (EvaluationID, VendorID, QuestionID).
type Response struct {
	ID            string    `json:"response_id"`
	EvaluationID  string    `json:"evaluation_id"`
	VendorID      string    `json:"vendor_id"`
	QuestionID    string    `json:"question_id"`
	Answer        Answer    `json:"answer"`
	ResponseValue string    `json:"response_value"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Key identifies a response by its composite key.
type Key struct {
	EvaluationID string
	VendorID     string
	QuestionID   string
}

// Key returns the composite key of the response.
func (r Response) Key() Key {
	return Key{EvaluationID: r.EvaluationID, VendorID: r.VendorID, QuestionID: r.QuestionID}
}
