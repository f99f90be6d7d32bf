package submissions

import (
	"vendoreval-backend/internal/evaluations"
	"vendoreval-backend/internal/recommendations"
	"vendoreval-backend/internal/responses"
	"vendoreval-backend/internal/scoring"
)

// Outcome summarizes a save for the caller's UI.
type Outcome string

const (
	OutcomeAllSaved       Outcome = "all_saved"
	OutcomePartiallySaved Outcome = "partially_saved"
	OutcomeFailed         Outcome = "failed"
)

// Input is one answer submitted by a vendor.
type Input struct {
	QuestionID    string           `json:"question_id"`
	Answer        responses.Answer `json:"answer"`
	ResponseValue string           `json:"response_value"`
}

// ItemFailure reports an input that could not be saved.
type ItemFailure struct {
	QuestionID string `json:"question_id"`
	Reason     string `json:"reason"`
}

// SaveResult is returned by SaveResponses. Total is the number of inputs;
// Succeeded counts inputs that were saved and reconciled without error.
type SaveResult struct {
	Outcome        Outcome                `json:"outcome"`
	Total          int                    `json:"total"`
	Succeeded      int                    `json:"succeeded"`
	Saved          []responses.Response   `json:"saved"`
	Failed         []ItemFailure          `json:"failed"`
	Reconciliation recommendations.Result `json:"reconciliation"`
	Progress       scoring.Progress       `json:"progress"`
}

// SubmitResult is returned by a successful Submit.
type SubmitResult struct {
	Assignment evaluations.Assignment `json:"assignment"`
	Progress   scoring.Progress       `json:"progress"`
}

func deriveOutcome(total, succeeded int) Outcome {
	switch {
	case succeeded == 0 && total > 0:
		return OutcomeFailed
	case succeeded < total:
		return OutcomePartiallySaved
	default:
		return OutcomeAllSaved
	}
}
