package recommendations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vendoreval-backend/internal/responses"
	"vendoreval-backend/internal/shared/metrics"
	"vendoreval-backend/internal/shared/telemetry"
)

const (
	defaultBatchSize         = 10
	defaultLookupConcurrency = 4
)

// QuestionCatalog resolves the remediation text configured on a question.
// Unknown questions must return ErrQuestionNotFound.
type QuestionCatalog interface {
	RemediationText(ctx context.Context, questionID string) (RemediationText, error)
}

// Directory resolves the profile responsible for a vendor's recommendations.
// An empty id means unresolved.
type Directory interface {
	OwnerProfileID(ctx context.Context, vendorID string) (string, error)
}

// UpsertOutcome is what the store actually did for one item.
type UpsertOutcome int

const (
	OutcomeCreated UpsertOutcome = iota + 1
	OutcomeUpdated
	OutcomeUnchanged
)

// UpsertResult is the per-item result of Store.UpsertBatch. Recommendation
// holds the stored row when Err is nil.
type UpsertResult struct {
	Recommendation Recommendation
	Outcome        UpsertOutcome
	Err            error
}

// Store is the persistence the engine needs.
type Store interface {
	FindByResponseIDs(ctx context.Context, responseIDs []string) (map[string]Recommendation, error)
	// UpsertBatch inserts each recommendation or, when a row already exists
	// for its ResponseID, updates only text and updated_at. Results are
	// index-aligned with recs; a failing item must not undo its siblings.
	UpsertBatch(ctx context.Context, recs []Recommendation) []UpsertResult
}

// Ref links a created or updated recommendation to its response.
type Ref struct {
	RecommendationID string `json:"recommendation_id"`
	ResponseID       string `json:"response_id"`
}

// ItemError reports a response that could not be reconciled.
type ItemError struct {
	ResponseID string `json:"response_id"`
	Reason     string `json:"reason"`
}

// Result is the outcome of one reconciliation call. Every input response
// lands in exactly one list.
type Result struct {
	Created            []Ref       `json:"created"`
	Updated            []Ref       `json:"updated"`
	Unchanged          []string    `json:"unchanged"`
	SkippedNoText      []string    `json:"skipped_no_text"`
	SkippedNotNegative []string    `json:"skipped_not_negative"`
	SkippedErrors      []ItemError `json:"skipped_errors"`
}

// Counts summarizes a Result.
type Counts struct {
	Created            int `json:"created"`
	Updated            int `json:"updated"`
	Unchanged          int `json:"unchanged"`
	SkippedNoText      int `json:"skipped_no_text"`
	SkippedNotNegative int `json:"skipped_not_negative"`
	SkippedErrors      int `json:"skipped_errors"`
}

func newResult() Result {
	return Result{
		Created:            []Ref{},
		Updated:            []Ref{},
		Unchanged:          []string{},
		SkippedNoText:      []string{},
		SkippedNotNegative: []string{},
		SkippedErrors:      []ItemError{},
	}
}

// Counts returns the size of each outcome list.
func (r Result) Counts() Counts {
	return Counts{
		Created:            len(r.Created),
		Updated:            len(r.Updated),
		Unchanged:          len(r.Unchanged),
		SkippedNoText:      len(r.SkippedNoText),
		SkippedNotNegative: len(r.SkippedNotNegative),
		SkippedErrors:      len(r.SkippedErrors),
	}
}

// Reconciler derives recommendation rows from the responses of one
// evaluation/vendor pair.
type Reconciler struct {
	Questions         QuestionCatalog
	Directory         Directory
	Store             Store
	BatchSize         int
	LookupConcurrency int
	Now               func() time.Time
	NewID             func() string
}

type candidate struct {
	response responses.Response
	text     string
}

type lookup struct {
	text RemediationText
	err  error
}

// Reconcile creates or updates exactly one recommendation per negative
// response whose question carries remediation text. Only a scope violation
// (*InvalidScopeError) or a missing dependency is returned as an error; every
// per-response condition is reported in the Result.
func (r *Reconciler) Reconcile(ctx context.Context, evaluationID, vendorID string, batch []responses.Response) (Result, error) {
	if r == nil || r.Questions == nil || r.Store == nil {
		return Result{}, errors.New("reconciler not configured")
	}
	if strings.TrimSpace(evaluationID) == "" || strings.TrimSpace(vendorID) == "" {
		return Result{}, fmt.Errorf("%w: evaluation id and vendor id are required", ErrInvalidInput)
	}
	if err := checkScope(evaluationID, vendorID, batch); err != nil {
		metrics.IncReconcileRun("rejected")
		telemetry.Warn("reconcile.rejected", map[string]any{
			"evaluation_id": evaluationID,
			"vendor_id":     vendorID,
			"error":         err,
		})
		return Result{}, err
	}

	started := time.Now()
	res := newResult()

	negatives := r.classify(batch, &res)
	candidates := r.resolveTexts(ctx, negatives, &res)
	writes := r.plan(ctx, evaluationID, vendorID, candidates, &res)
	r.persist(ctx, writes, &res)

	r.report(evaluationID, vendorID, res, time.Since(started))
	return res, nil
}

func checkScope(evaluationID, vendorID string, batch []responses.Response) error {
	var violations []ScopeViolation
	for _, resp := range batch {
		if resp.EvaluationID != evaluationID || resp.VendorID != vendorID {
			violations = append(violations, ScopeViolation{
				ResponseID:   resp.ID,
				EvaluationID: resp.EvaluationID,
				VendorID:     resp.VendorID,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return &InvalidScopeError{EvaluationID: evaluationID, VendorID: vendorID, Violations: violations}
}

// classify drops non-negative answers and malformed entries, preserving input order.
func (r *Reconciler) classify(batch []responses.Response, res *Result) []responses.Response {
	seen := make(map[string]bool, len(batch))
	negatives := make([]responses.Response, 0, len(batch))
	for _, resp := range batch {
		id := strings.TrimSpace(resp.ID)
		switch {
		case id == "":
			res.SkippedErrors = append(res.SkippedErrors, ItemError{Reason: "missing response id"})
			continue
		case seen[id]:
			res.SkippedErrors = append(res.SkippedErrors, ItemError{ResponseID: id, Reason: "duplicate response in batch"})
			continue
		}
		seen[id] = true
		if !resp.Answer.IsNegative() {
			res.SkippedNotNegative = append(res.SkippedNotNegative, id)
			continue
		}
		negatives = append(negatives, resp)
	}
	return negatives
}

// resolveTexts looks up remediation text for each negative response. Lookups
// run concurrently but results are consumed in input order.
func (r *Reconciler) resolveTexts(ctx context.Context, negatives []responses.Response, res *Result) []candidate {
	lookups := make([]lookup, len(negatives))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.lookupConcurrency())
	for i := range negatives {
		g.Go(func() error {
			text, err := r.Questions.RemediationText(gctx, negatives[i].QuestionID)
			lookups[i] = lookup{text: text, err: err}
			return nil
		})
	}
	_ = g.Wait()

	candidates := make([]candidate, 0, len(negatives))
	for i, resp := range negatives {
		lk := lookups[i]
		if lk.err != nil {
			reason := fmt.Sprintf("question lookup %s: %v", resp.QuestionID, lk.err)
			if errors.Is(lk.err, ErrQuestionNotFound) {
				reason = "question not found: " + resp.QuestionID
			}
			res.SkippedErrors = append(res.SkippedErrors, ItemError{ResponseID: resp.ID, Reason: reason})
			continue
		}
		text, ok := lk.text.Get()
		if !ok {
			res.SkippedNoText = append(res.SkippedNoText, resp.ID)
			continue
		}
		candidates = append(candidates, candidate{response: resp, text: text})
	}
	return candidates
}

// plan turns candidates into writes: new rows for unseen responses, text
// updates for changed ones. Rows whose text already matches need no write.
func (r *Reconciler) plan(ctx context.Context, evaluationID, vendorID string, candidates []candidate, res *Result) []Recommendation {
	if len(candidates) == 0 {
		return nil
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.response.ID)
	}
	existing, err := r.Store.FindByResponseIDs(ctx, ids)
	if err != nil {
		for _, c := range candidates {
			res.SkippedErrors = append(res.SkippedErrors, ItemError{
				ResponseID: c.response.ID,
				Reason:     "lookup existing recommendation: " + err.Error(),
			})
		}
		return nil
	}

	now := r.now()
	var (
		owner         *string
		ownerResolved bool
	)
	writes := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if cur, ok := existing[c.response.ID]; ok {
			if cur.Text == c.text {
				res.Unchanged = append(res.Unchanged, c.response.ID)
				continue
			}
			cur.Text = c.text
			cur.UpdatedAt = now
			writes = append(writes, cur)
			continue
		}
		if !ownerResolved {
			owner = r.resolveOwner(ctx, vendorID)
			ownerResolved = true
		}
		writes = append(writes, Recommendation{
			ID:           r.newID(),
			ResponseID:   c.response.ID,
			EvaluationID: evaluationID,
			VendorID:     vendorID,
			QuestionID:   c.response.QuestionID,
			Text:         c.text,
			Status:       StatusPending,
			Priority:     PriorityFor(c.response.Answer),
			AssignedTo:   owner,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return writes
}

// resolveOwner never fails the call: lookup errors degrade to unassigned.
func (r *Reconciler) resolveOwner(ctx context.Context, vendorID string) *string {
	if r.Directory == nil {
		return nil
	}
	profileID, err := r.Directory.OwnerProfileID(ctx, vendorID)
	if err != nil {
		telemetry.Warn("reconcile.owner_unresolved", map[string]any{
			"vendor_id": vendorID,
			"error":     err,
		})
		return nil
	}
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil
	}
	return &profileID
}

// persist writes in batches of BatchSize and records what the store reports,
// so a create that lost a race to a concurrent caller shows up as an update.
func (r *Reconciler) persist(ctx context.Context, writes []Recommendation, res *Result) {
	size := r.batchSize()
	for start := 0; start < len(writes); start += size {
		end := min(start+size, len(writes))
		chunk := writes[start:end]
		results := r.Store.UpsertBatch(ctx, chunk)
		for i, w := range chunk {
			ur := UpsertResult{Err: errors.New("store returned no result")}
			if i < len(results) {
				ur = results[i]
			}
			if ur.Err != nil {
				telemetry.CaptureError(ur.Err, map[string]string{
					"op":          "recommendations.upsert",
					"response_id": w.ResponseID,
				})
				res.SkippedErrors = append(res.SkippedErrors, ItemError{
					ResponseID: w.ResponseID,
					Reason:     "store: " + ur.Err.Error(),
				})
				continue
			}
			ref := Ref{RecommendationID: ur.Recommendation.ID, ResponseID: w.ResponseID}
			switch ur.Outcome {
			case OutcomeCreated:
				res.Created = append(res.Created, ref)
			case OutcomeUpdated:
				res.Updated = append(res.Updated, ref)
			default:
				res.Unchanged = append(res.Unchanged, w.ResponseID)
			}
		}
	}
}

func (r *Reconciler) report(evaluationID, vendorID string, res Result, elapsed time.Duration) {
	counts := res.Counts()
	metrics.AddReconcileItems("created", counts.Created)
	metrics.AddReconcileItems("updated", counts.Updated)
	metrics.AddReconcileItems("unchanged", counts.Unchanged)
	metrics.AddReconcileItems("skipped_no_text", counts.SkippedNoText)
	metrics.AddReconcileItems("skipped_not_negative", counts.SkippedNotNegative)
	metrics.AddReconcileItems("error", counts.SkippedErrors)
	metrics.ObserveReconcileSeconds(elapsed.Seconds())

	result := "ok"
	if counts.SkippedErrors > 0 {
		result = "partial"
	}
	metrics.IncReconcileRun(result)

	for _, item := range res.SkippedErrors {
		telemetry.Warn("reconcile.item_failed", map[string]any{
			"evaluation_id": evaluationID,
			"vendor_id":     vendorID,
			"response_id":   item.ResponseID,
			"reason":        item.Reason,
		})
	}
	telemetry.Info("reconcile.complete", map[string]any{
		"evaluation_id":        evaluationID,
		"vendor_id":            vendorID,
		"created":              counts.Created,
		"updated":              counts.Updated,
		"unchanged":            counts.Unchanged,
		"skipped_no_text":      counts.SkippedNoText,
		"skipped_not_negative": counts.SkippedNotNegative,
		"skipped_errors":       counts.SkippedErrors,
		"duration_ms":          float64(elapsed.Microseconds()) / 1000.0,
	})
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *Reconciler) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

func (r *Reconciler) batchSize() int {
	if r.BatchSize <= 0 {
		return defaultBatchSize
	}
	return r.BatchSize
}

func (r *Reconciler) lookupConcurrency() int {
	if r.LookupConcurrency <= 0 {
		return defaultLookupConcurrency
	}
	return r.LookupConcurrency
}
