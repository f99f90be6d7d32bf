package responses

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepoUpsertKeepsOneRowPerKey(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	first, err := repo.Upsert(ctx, Response{EvaluationID: "e1", VendorID: "v1", QuestionID: "q1", Answer: AnswerNo, ResponseValue: "no MFA"})
	if err != nil {
		t.Fatalf("Upsert first: %v", err)
	}
	second, err := repo.Upsert(ctx, Response{EvaluationID: "e1", VendorID: "v1", QuestionID: "q1", Answer: AnswerYes, ResponseValue: "MFA on"})
	if err != nil {
		t.Fatalf("Upsert second: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same id for same key, got %s and %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected created_at preserved")
	}

	list, err := repo.ListByPair(ctx, "e1", "v1")
	if err != nil {
		t.Fatalf("ListByPair: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 response, got %d", len(list))
	}
	if list[0].Answer != AnswerYes || list[0].ResponseValue != "MFA on" {
		t.Fatalf("expected updated values, got %+v", list[0])
	}
}

func TestMemoryRepoRejectsIncompleteKey(t *testing.T) {
	repo := NewMemoryRepo()
	if _, err := repo.Upsert(context.Background(), Response{EvaluationID: "e1", VendorID: "v1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMemoryRepoGetByIDNotFound(t *testing.T) {
	repo := NewMemoryRepo()
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
