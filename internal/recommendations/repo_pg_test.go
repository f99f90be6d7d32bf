package recommendations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var returningColumns = []string{
	"id", "response_id", "evaluation_id", "vendor_id", "question_id", "recommendation_text",
	"status", "priority", "assigned_to", "created_at", "updated_at", "inserted",
}

var rowColumns = returningColumns[:len(returningColumns)-1]

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func sampleRec(id, responseID string) Recommendation {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return Recommendation{
		ID:           id,
		ResponseID:   responseID,
		EvaluationID: "eval-1",
		VendorID:     "vendor-1",
		QuestionID:   "q-1",
		Text:         "Add MFA",
		Status:       StatusPending,
		Priority:     PriorityHigh,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPGRepoUpsertBatchIsolatesFailingItem(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	first := sampleRec("rec-1", "resp-1")
	second := sampleRec("rec-2", "resp-2")

	mock.ExpectBegin()
	mock.ExpectExec("^SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO recommendations").
		WithArgs(
			first.ID, first.ResponseID, first.EvaluationID, first.VendorID, first.QuestionID,
			first.Text, "pending", int64(1), nil, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows(returningColumns).AddRow(
			"rec-1", "resp-1", "eval-1", "vendor-1", "q-1", "Add MFA", "pending", int64(1), nil, now, now, true,
		))
	mock.ExpectExec("^RELEASE SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("^SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO recommendations").WillReturnError(errors.New("check violation"))
	mock.ExpectExec("^ROLLBACK TO SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	results := repo.UpsertBatch(context.Background(), []Recommendation{first, second})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Outcome != OutcomeCreated {
		t.Fatalf("expected first created, got %+v", results[0])
	}
	if results[0].Recommendation.AssignedTo != nil {
		t.Fatalf("expected nil assigned_to")
	}
	if results[1].Err == nil {
		t.Fatalf("expected second to fail")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoUpsertBatchReportsUpdateAndUnchanged(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	changed := sampleRec("rec-new-1", "resp-1")
	changed.Text = "Add MFA and rotate keys"
	same := sampleRec("rec-new-2", "resp-2")

	mock.ExpectBegin()
	mock.ExpectExec("^SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO recommendations").
		WillReturnRows(sqlmock.NewRows(returningColumns).AddRow(
			"rec-old-1", "resp-1", "eval-1", "vendor-1", "q-1", "Add MFA and rotate keys",
			"in_progress", int64(1), "owner-1", created, now, false,
		))
	mock.ExpectExec("^RELEASE SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("^SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO recommendations").WillReturnRows(sqlmock.NewRows(returningColumns))
	mock.ExpectQuery(`FROM recommendations WHERE response_id = \$1`).
		WithArgs("resp-2").
		WillReturnRows(sqlmock.NewRows(rowColumns).AddRow(
			"rec-old-2", "resp-2", "eval-1", "vendor-1", "q-1", "Add MFA",
			"pending", int64(1), nil, created, created,
		))
	mock.ExpectExec("^RELEASE SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	results := repo.UpsertBatch(context.Background(), []Recommendation{changed, same})
	if results[0].Err != nil || results[0].Outcome != OutcomeUpdated {
		t.Fatalf("expected update, got %+v", results[0])
	}
	if results[0].Recommendation.ID != "rec-old-1" || results[0].Recommendation.Status != StatusInProgress {
		t.Fatalf("expected existing row returned, got %+v", results[0].Recommendation)
	}
	if results[0].Recommendation.AssignedTo == nil || *results[0].Recommendation.AssignedTo != "owner-1" {
		t.Fatalf("expected assigned_to owner-1")
	}
	if results[1].Err != nil || results[1].Outcome != OutcomeUnchanged {
		t.Fatalf("expected unchanged, got %+v", results[1])
	}
	if results[1].Recommendation.ID != "rec-old-2" {
		t.Fatalf("expected existing id, got %q", results[1].Recommendation.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoUpsertBatchCommitFailureFailsAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("^SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO recommendations").
		WillReturnRows(sqlmock.NewRows(returningColumns).AddRow(
			"rec-1", "resp-1", "eval-1", "vendor-1", "q-1", "Add MFA", "pending", int64(1), nil, now, now, true,
		))
	mock.ExpectExec("^RELEASE SAVEPOINT rec_upsert$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	results := repo.UpsertBatch(context.Background(), []Recommendation{sampleRec("rec-1", "resp-1")})
	if results[0].Err == nil {
		t.Fatalf("expected commit error to fail the item")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoUpsertBatchBeginFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	results := repo.UpsertBatch(context.Background(), []Recommendation{
		sampleRec("rec-1", "resp-1"),
		sampleRec("rec-2", "resp-2"),
	})
	for i, res := range results {
		if res.Err == nil {
			t.Fatalf("expected item %d to fail", i)
		}
	}
}

func TestPGRepoFindByResponseIDs(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE response_id IN \(\$1, \$2\)`).
		WithArgs("resp-1", "resp-2").
		WillReturnRows(sqlmock.NewRows(rowColumns).AddRow(
			"rec-1", "resp-1", "eval-1", "vendor-1", "q-1", "Add MFA", "pending", int64(2), "owner-1", now, now,
		))

	found, err := repo.FindByResponseIDs(context.Background(), []string{"resp-1", "resp-2"})
	if err != nil {
		t.Fatalf("FindByResponseIDs: %v", err)
	}
	if len(found) != 1 || found["resp-1"].Priority != PriorityMedium {
		t.Fatalf("unexpected result: %+v", found)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoFindByResponseIDsEmptySkipsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)
	found, err := repo.FindByResponseIDs(context.Background(), nil)
	if err != nil || len(found) != 0 {
		t.Fatalf("expected empty result, got %v %v", found, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoUpdateStatusNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("UPDATE recommendations SET status").
		WithArgs("missing", "implemented").
		WillReturnRows(sqlmock.NewRows(rowColumns))

	_, err := repo.UpdateStatus(context.Background(), "missing", StatusImplemented)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByEvaluationOrdersByPriority(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE evaluation_id = \$1 ORDER BY priority, created_at, id`).
		WithArgs("eval-1").
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow("rec-1", "resp-1", "eval-1", "vendor-1", "q-1", "a", "pending", int64(1), nil, now, now).
			AddRow("rec-2", "resp-2", "eval-1", "vendor-2", "q-2", "b", "rejected", int64(2), nil, now, now))

	recs, err := repo.ListByEvaluation(context.Background(), "eval-1")
	if err != nil {
		t.Fatalf("ListByEvaluation: %v", err)
	}
	if len(recs) != 2 || recs[1].Status != StatusRejected {
		t.Fatalf("unexpected rows: %+v", recs)
	}
}
