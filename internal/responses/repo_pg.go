package responses

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Upsert relies on the (evaluation_id, vendor_id, question_id) unique constraint
// so concurrent saves of the same answer converge on one row.
func (r *PGRepo) Upsert(ctx context.Context, response Response) (Response, error) {
	if response.EvaluationID == "" || response.VendorID == "" || response.QuestionID == "" {
		return Response{}, ErrInvalidInput
	}
	if response.ID == "" {
		response.ID = uuid.NewString()
	}
	const query = `
INSERT INTO responses (id, evaluation_id, vendor_id, question_id, answer, response_value, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (evaluation_id, vendor_id, question_id) DO UPDATE SET
  answer = EXCLUDED.answer,
  response_value = EXCLUDED.response_value,
  updated_at = now()
RETURNING id, created_at, updated_at`
	out := response
	err := r.DB.QueryRowContext(ctx, query,
		response.ID,
		response.EvaluationID,
		response.VendorID,
		response.QuestionID,
		response.Answer,
		response.ResponseValue,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return Response{}, err
	}
	return out, nil
}

// GetByID returns a response by its ID.
func (r *PGRepo) GetByID(ctx context.Context, responseID string) (Response, error) {
	const query = `
SELECT id, evaluation_id, vendor_id, question_id, answer, response_value, created_at, updated_at
FROM responses
WHERE id = $1
LIMIT 1`
	var response Response
	err := r.DB.QueryRowContext(ctx, query, responseID).Scan(
		&response.ID,
		&response.EvaluationID,
		&response.VendorID,
		&response.QuestionID,
		&response.Answer,
		&response.ResponseValue,
		&response.CreatedAt,
		&response.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Response{}, ErrNotFound
		}
		return Response{}, err
	}
	return response, nil
}

// ListByPair returns every response of a vendor for an evaluation.
func (r *PGRepo) ListByPair(ctx context.Context, evaluationID, vendorID string) ([]Response, error) {
	const query = `
SELECT id, evaluation_id, vendor_id, question_id, answer, response_value, created_at, updated_at
FROM responses
WHERE evaluation_id = $1 AND vendor_id = $2
ORDER BY question_id`
	rows, err := r.DB.QueryContext(ctx, query, evaluationID, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Response, 0)
	for rows.Next() {
		var response Response
		if err := rows.Scan(
			&response.ID,
			&response.EvaluationID,
			&response.VendorID,
			&response.QuestionID,
			&response.Answer,
			&response.ResponseValue,
			&response.CreatedAt,
			&response.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, response)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
