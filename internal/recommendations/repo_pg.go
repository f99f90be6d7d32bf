package recommendations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, response_id, evaluation_id, vendor_id, question_id, recommendation_text, status, priority, assigned_to, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(row rowScanner) (Recommendation, error) {
	var rec Recommendation
	var assignedTo sql.NullString
	if err := row.Scan(
		&rec.ID,
		&rec.ResponseID,
		&rec.EvaluationID,
		&rec.VendorID,
		&rec.QuestionID,
		&rec.Text,
		&rec.Status,
		&rec.Priority,
		&assignedTo,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return Recommendation{}, err
	}
	if assignedTo.Valid {
		owner := assignedTo.String
		rec.AssignedTo = &owner
	}
	return rec, nil
}

// FindByResponseIDs returns the existing recommendations keyed by response id.
func (r *PGRepo) FindByResponseIDs(ctx context.Context, responseIDs []string) (map[string]Recommendation, error) {
	out := make(map[string]Recommendation, len(responseIDs))
	if len(responseIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(responseIDs))
	args := make([]any, len(responseIDs))
	for i, id := range responseIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + selectColumns + `
FROM recommendations
WHERE response_id IN (` + strings.Join(placeholders, ", ") + `)`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		out[rec.ResponseID] = rec
	}
	return out, rows.Err()
}

const upsertQuery = `
INSERT INTO recommendations (id, response_id, evaluation_id, vendor_id, question_id, recommendation_text, status, priority, assigned_to, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (response_id) DO UPDATE SET
  recommendation_text = EXCLUDED.recommendation_text,
  updated_at = EXCLUDED.updated_at
WHERE recommendations.recommendation_text IS DISTINCT FROM EXCLUDED.recommendation_text
RETURNING ` + selectColumns + `, (xmax = 0) AS inserted`

// UpsertBatch writes the batch in one transaction with a savepoint per item,
// so one failing row is rolled back alone. The unique response_id constraint
// turns a concurrent duplicate create into an update of the winner's row.
func (r *PGRepo) UpsertBatch(ctx context.Context, recs []Recommendation) []UpsertResult {
	results := make([]UpsertResult, len(recs))
	if len(recs) == 0 {
		return results
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return failAll(results, fmt.Errorf("begin: %w", err))
	}

	for i, rec := range recs {
		if _, err := tx.ExecContext(ctx, "SAVEPOINT rec_upsert"); err != nil {
			_ = tx.Rollback()
			return failAll(results, fmt.Errorf("savepoint: %w", err))
		}
		res, err := upsertOne(ctx, tx, rec)
		if err != nil {
			results[i] = UpsertResult{Err: err}
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT rec_upsert"); rbErr != nil {
				_ = tx.Rollback()
				return failAll(results, fmt.Errorf("rollback to savepoint: %w", rbErr))
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT rec_upsert"); err != nil {
			_ = tx.Rollback()
			return failAll(results, fmt.Errorf("release savepoint: %w", err))
		}
		results[i] = res
	}

	if err := tx.Commit(); err != nil {
		return failAll(results, fmt.Errorf("commit: %w", err))
	}
	return results
}

func upsertOne(ctx context.Context, tx *sql.Tx, rec Recommendation) (UpsertResult, error) {
	if rec.ID == "" || rec.ResponseID == "" {
		return UpsertResult{}, ErrInvalidInput
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	var stored Recommendation
	var assignedTo sql.NullString
	var inserted bool
	err := tx.QueryRowContext(ctx, upsertQuery,
		rec.ID,
		rec.ResponseID,
		rec.EvaluationID,
		rec.VendorID,
		rec.QuestionID,
		rec.Text,
		rec.Status,
		rec.Priority,
		rec.AssignedTo,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(
		&stored.ID,
		&stored.ResponseID,
		&stored.EvaluationID,
		&stored.VendorID,
		&stored.QuestionID,
		&stored.Text,
		&stored.Status,
		&stored.Priority,
		&assignedTo,
		&stored.CreatedAt,
		&stored.UpdatedAt,
		&inserted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict with identical text: the WHERE clause suppressed the update.
		existing, err := scanRecommendation(tx.QueryRowContext(ctx,
			`SELECT `+selectColumns+` FROM recommendations WHERE response_id = $1`, rec.ResponseID))
		if err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{Recommendation: existing, Outcome: OutcomeUnchanged}, nil
	}
	if err != nil {
		return UpsertResult{}, err
	}
	if assignedTo.Valid {
		owner := assignedTo.String
		stored.AssignedTo = &owner
	}
	outcome := OutcomeUpdated
	if inserted {
		outcome = OutcomeCreated
	}
	return UpsertResult{Recommendation: stored, Outcome: outcome}, nil
}

func failAll(results []UpsertResult, err error) []UpsertResult {
	for i := range results {
		results[i] = UpsertResult{Err: err}
	}
	return results
}

// GetByID returns a recommendation by its ID.
func (r *PGRepo) GetByID(ctx context.Context, recommendationID string) (Recommendation, error) {
	rec, err := scanRecommendation(r.DB.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM recommendations WHERE id = $1 LIMIT 1`, recommendationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recommendation{}, ErrNotFound
		}
		return Recommendation{}, err
	}
	return rec, nil
}

func (r *PGRepo) ListByPair(ctx context.Context, evaluationID, vendorID string) ([]Recommendation, error) {
	return r.list(ctx, `evaluation_id = $1 AND vendor_id = $2`, evaluationID, vendorID)
}

func (r *PGRepo) ListByEvaluation(ctx context.Context, evaluationID string) ([]Recommendation, error) {
	return r.list(ctx, `evaluation_id = $1`, evaluationID)
}

func (r *PGRepo) ListByVendor(ctx context.Context, vendorID string) ([]Recommendation, error) {
	return r.list(ctx, `vendor_id = $1`, vendorID)
}

// UpdateStatus sets the workflow status.
func (r *PGRepo) UpdateStatus(ctx context.Context, recommendationID string, status Status) (Recommendation, error) {
	const query = `
UPDATE recommendations SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + selectColumns
	rec, err := scanRecommendation(r.DB.QueryRowContext(ctx, query, recommendationID, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recommendation{}, ErrNotFound
		}
		return Recommendation{}, err
	}
	return rec, nil
}

func (r *PGRepo) list(ctx context.Context, where string, args ...any) ([]Recommendation, error) {
	query := `SELECT ` + selectColumns + `
FROM recommendations
WHERE ` + where + `
ORDER BY priority, created_at, id`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
