package evaluations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendoreval-backend/internal/recommendations"
)

type stubVendors map[string]bool

func (s stubVendors) Exists(_ context.Context, vendorID string) (bool, error) {
	return s[vendorID], nil
}

func newTestService() *Service {
	svc := NewService(NewMemoryRepo(), stubVendors{"vendor-1": true})
	svc.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestCreateEvaluationValidatesTitle(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), "admin-1", CreateInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	evaluation, err := svc.Create(context.Background(), "admin-1", CreateInput{Title: " Security review "})
	require.NoError(t, err)
	assert.Equal(t, "Security review", evaluation.Title)
	assert.Equal(t, StatusDraft, evaluation.Status)
	assert.Equal(t, "admin-1", evaluation.CreatedBy)
}

func TestAddQuestionDefaultsAndPositions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	evaluation, err := svc.Create(ctx, "admin-1", CreateInput{Title: "Review"})
	require.NoError(t, err)

	q1, err := svc.AddQuestion(ctx, evaluation.ID, QuestionInput{Text: ptr("MFA enabled?"), RecommendationText: ptr("Add MFA")})
	require.NoError(t, err)
	q2, err := svc.AddQuestion(ctx, evaluation.ID, QuestionInput{Text: ptr("Backups?"), RecommendationText: ptr("   "), Required: ptr(false)})
	require.NoError(t, err)

	assert.True(t, q1.Required)
	assert.Equal(t, 1.0, q1.Weight)
	assert.Equal(t, 0, q1.Position)
	assert.Equal(t, 1, q2.Position)
	assert.False(t, q2.Required)
	assert.Nil(t, q2.RecommendationText, "blank remediation text is stored as absent")

	_, err = svc.AddQuestion(ctx, "missing", QuestionInput{Text: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddQuestion(ctx, evaluation.ID, QuestionInput{Text: ptr("x"), Weight: ptr(0.0)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateQuestionFeedsCatalog(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	evaluation, err := svc.Create(ctx, "admin-1", CreateInput{Title: "Review"})
	require.NoError(t, err)
	q, err := svc.AddQuestion(ctx, evaluation.ID, QuestionInput{Text: ptr("MFA enabled?"), RecommendationText: ptr("Add MFA")})
	require.NoError(t, err)

	catalog := Catalog{Repo: svc.Repo}
	text, err := catalog.RemediationText(ctx, q.ID)
	require.NoError(t, err)
	got, ok := text.Get()
	assert.True(t, ok)
	assert.Equal(t, "Add MFA", got)

	_, err = svc.UpdateQuestion(ctx, q.ID, QuestionInput{RecommendationText: ptr("Add MFA and rotate keys")})
	require.NoError(t, err)
	text, err = catalog.RemediationText(ctx, q.ID)
	require.NoError(t, err)
	got, _ = text.Get()
	assert.Equal(t, "Add MFA and rotate keys", got)

	_, err = catalog.RemediationText(ctx, "nope")
	assert.ErrorIs(t, err, recommendations.ErrQuestionNotFound)
}

func TestRemediationTextKeptAsWritten(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	evaluation, err := svc.Create(ctx, "admin-1", CreateInput{Title: "Review"})
	require.NoError(t, err)
	q, err := svc.AddQuestion(ctx, evaluation.ID, QuestionInput{Text: ptr("Keys?"), RecommendationText: ptr("Rotate keys\n")})
	require.NoError(t, err)
	require.NotNil(t, q.RecommendationText)
	assert.Equal(t, "Rotate keys\n", *q.RecommendationText)

	text, err := Catalog{Repo: svc.Repo}.RemediationText(ctx, q.ID)
	require.NoError(t, err)
	got, _ := text.Get()
	assert.Equal(t, "Rotate keys\n", got)
}

func TestAssignVendorIsIdempotentAndChecksVendor(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	evaluation, err := svc.Create(ctx, "admin-1", CreateInput{Title: "Review"})
	require.NoError(t, err)

	first, err := svc.AssignVendor(ctx, evaluation.ID, "vendor-1")
	require.NoError(t, err)
	assert.Equal(t, AssignmentPending, first.Status)

	_, err = svc.AdvanceAssignment(ctx, evaluation.ID, "vendor-1", AssignmentInProgress)
	require.NoError(t, err)
	again, err := svc.AssignVendor(ctx, evaluation.ID, "vendor-1")
	require.NoError(t, err)
	assert.Equal(t, AssignmentInProgress, again.Status, "re-assigning keeps progress")

	_, err = svc.AssignVendor(ctx, evaluation.ID, "vendor-unknown")
	assert.ErrorIs(t, err, ErrInvalidInput)

	listed, err := svc.ListForVendor(ctx, "vendor-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, evaluation.ID, listed[0].ID)
}

func TestAdvanceAssignmentOnlyMovesForward(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	evaluation, err := svc.Create(ctx, "admin-1", CreateInput{Title: "Review"})
	require.NoError(t, err)
	_, err = svc.AssignVendor(ctx, evaluation.ID, "vendor-1")
	require.NoError(t, err)

	done, err := svc.AdvanceAssignment(ctx, evaluation.ID, "vendor-1", AssignmentCompleted)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	_, err = svc.AdvanceAssignment(ctx, evaluation.ID, "vendor-1", AssignmentInProgress)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	same, err := svc.AdvanceAssignment(ctx, evaluation.ID, "vendor-1", AssignmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, done.CompletedAt, same.CompletedAt)

	_, err = svc.AdvanceAssignment(ctx, evaluation.ID, "vendor-2", AssignmentInProgress)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	evaluation, err := svc.Create(ctx, "admin-1", CreateInput{Title: "Review"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, evaluation.ID, "closed")
	assert.ErrorIs(t, err, ErrInvalidInput)
	updated, err := svc.UpdateStatus(ctx, evaluation.ID, "Active")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, updated.Status)
}
