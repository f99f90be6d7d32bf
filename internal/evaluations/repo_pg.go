package evaluations

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const evaluationColumns = `id, title, description, status, created_by, created_at, updated_at`

func scanEvaluation(row rowScanner) (Evaluation, error) {
	var evaluation Evaluation
	var description, createdBy sql.NullString
	if err := row.Scan(
		&evaluation.ID,
		&evaluation.Title,
		&description,
		&evaluation.Status,
		&createdBy,
		&evaluation.CreatedAt,
		&evaluation.UpdatedAt,
	); err != nil {
		return Evaluation{}, err
	}
	evaluation.Description = description.String
	evaluation.CreatedBy = createdBy.String
	return evaluation, nil
}

func (r *PGRepo) CreateEvaluation(ctx context.Context, evaluation Evaluation) error {
	const query = `
INSERT INTO evaluations (id, title, description, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		evaluation.ID,
		evaluation.Title,
		nullableString(evaluation.Description),
		evaluation.Status,
		nullableString(evaluation.CreatedBy),
		evaluation.CreatedAt,
		evaluation.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetEvaluation(ctx context.Context, evaluationID string) (Evaluation, error) {
	evaluation, err := scanEvaluation(r.DB.QueryRowContext(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1 LIMIT 1`, evaluationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Evaluation{}, ErrNotFound
		}
		return Evaluation{}, err
	}
	return evaluation, nil
}

func (r *PGRepo) ListEvaluations(ctx context.Context) ([]Evaluation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Evaluation, 0)
	for rows.Next() {
		evaluation, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, evaluation)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateEvaluationStatus(ctx context.Context, evaluationID string, status Status) (Evaluation, error) {
	const query = `
UPDATE evaluations SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + evaluationColumns
	evaluation, err := scanEvaluation(r.DB.QueryRowContext(ctx, query, evaluationID, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Evaluation{}, ErrNotFound
		}
		return Evaluation{}, err
	}
	return evaluation, nil
}

const questionColumns = `id, evaluation_id, text, category, required, weight, recommendation_text, position, created_at, updated_at`

func scanQuestion(row rowScanner) (Question, error) {
	var question Question
	var category, recommendation sql.NullString
	if err := row.Scan(
		&question.ID,
		&question.EvaluationID,
		&question.Text,
		&category,
		&question.Required,
		&question.Weight,
		&recommendation,
		&question.Position,
		&question.CreatedAt,
		&question.UpdatedAt,
	); err != nil {
		return Question{}, err
	}
	question.Category = category.String
	if recommendation.Valid {
		text := recommendation.String
		question.RecommendationText = &text
	}
	return question, nil
}

func (r *PGRepo) CreateQuestion(ctx context.Context, question Question) error {
	const query = `
INSERT INTO questions (id, evaluation_id, text, category, required, weight, recommendation_text, position, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		question.ID,
		question.EvaluationID,
		question.Text,
		nullableString(question.Category),
		question.Required,
		question.Weight,
		question.RecommendationText,
		question.Position,
		question.CreatedAt,
		question.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetQuestion(ctx context.Context, questionID string) (Question, error) {
	question, err := scanQuestion(r.DB.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1 LIMIT 1`, questionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrQuestionNotFound
		}
		return Question{}, err
	}
	return question, nil
}

func (r *PGRepo) ListQuestions(ctx context.Context, evaluationID string) ([]Question, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE evaluation_id = $1 ORDER BY position, id`, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Question, 0)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, question)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateQuestion(ctx context.Context, question Question) (Question, error) {
	const query = `
UPDATE questions SET
  text = $2,
  category = $3,
  required = $4,
  weight = $5,
  recommendation_text = $6,
  updated_at = now()
WHERE id = $1
RETURNING ` + questionColumns
	updated, err := scanQuestion(r.DB.QueryRowContext(ctx, query,
		question.ID,
		question.Text,
		nullableString(question.Category),
		question.Required,
		question.Weight,
		question.RecommendationText,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrQuestionNotFound
		}
		return Question{}, err
	}
	return updated, nil
}

const assignmentColumns = `evaluation_id, vendor_id, status, assigned_at, completed_at`

func scanAssignment(row rowScanner) (Assignment, error) {
	var assignment Assignment
	var completedAt sql.NullTime
	if err := row.Scan(
		&assignment.EvaluationID,
		&assignment.VendorID,
		&assignment.Status,
		&assignment.AssignedAt,
		&completedAt,
	); err != nil {
		return Assignment{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		assignment.CompletedAt = &t
	}
	return assignment, nil
}

// Assign inserts the pair; on conflict the no-op update makes RETURNING
// yield the existing row.
func (r *PGRepo) Assign(ctx context.Context, assignment Assignment) (Assignment, error) {
	const query = `
INSERT INTO evaluation_vendors (evaluation_id, vendor_id, status, assigned_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (evaluation_id, vendor_id) DO UPDATE SET evaluation_id = EXCLUDED.evaluation_id
RETURNING ` + assignmentColumns
	return scanAssignment(r.DB.QueryRowContext(ctx, query,
		assignment.EvaluationID,
		assignment.VendorID,
		assignment.Status,
		assignment.AssignedAt,
	))
}

func (r *PGRepo) GetAssignment(ctx context.Context, evaluationID, vendorID string) (Assignment, error) {
	assignment, err := scanAssignment(r.DB.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM evaluation_vendors WHERE evaluation_id = $1 AND vendor_id = $2`,
		evaluationID, vendorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, ErrAssignmentNotFound
		}
		return Assignment{}, err
	}
	return assignment, nil
}

func (r *PGRepo) ListAssignmentsByEvaluation(ctx context.Context, evaluationID string) ([]Assignment, error) {
	return r.listAssignments(ctx, `evaluation_id = $1`, evaluationID)
}

func (r *PGRepo) ListAssignmentsByVendor(ctx context.Context, vendorID string) ([]Assignment, error) {
	return r.listAssignments(ctx, `vendor_id = $1`, vendorID)
}

func (r *PGRepo) listAssignments(ctx context.Context, where string, arg string) ([]Assignment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM evaluation_vendors WHERE `+where+` ORDER BY assigned_at, evaluation_id, vendor_id`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Assignment, 0)
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, assignment)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetAssignmentStatus(ctx context.Context, evaluationID, vendorID string, status AssignmentStatus, completedAt *time.Time) (Assignment, error) {
	const query = `
UPDATE evaluation_vendors SET status = $3, completed_at = $4
WHERE evaluation_id = $1 AND vendor_id = $2
RETURNING ` + assignmentColumns
	assignment, err := scanAssignment(r.DB.QueryRowContext(ctx, query, evaluationID, vendorID, status, completedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, ErrAssignmentNotFound
		}
		return Assignment{}, err
	}
	return assignment, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
