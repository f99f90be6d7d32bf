package recommendations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores recommendations in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu         sync.RWMutex
	byID       map[string]Recommendation
	byResponse map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:       make(map[string]Recommendation),
		byResponse: make(map[string]string),
	}
}

// FindByResponseIDs returns the existing recommendations keyed by response id.
func (r *MemoryRepo) FindByResponseIDs(ctx context.Context, responseIDs []string) (map[string]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Recommendation, len(responseIDs))
	for _, responseID := range responseIDs {
		if id, ok := r.byResponse[responseID]; ok {
			out[responseID] = r.byID[id]
		}
	}
	return out, nil
}

// UpsertBatch applies each item under the lock, so the response id key
// check and the write happen atomically per item.
func (r *MemoryRepo) UpsertBatch(ctx context.Context, recs []Recommendation) []UpsertResult {
	results := make([]UpsertResult, len(recs))
	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			results[i] = UpsertResult{Err: err}
			continue
		}
		results[i] = r.upsert(rec)
	}
	return results
}

func (r *MemoryRepo) upsert(rec Recommendation) UpsertResult {
	if rec.ResponseID == "" || rec.ID == "" {
		return UpsertResult{Err: ErrInvalidInput}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byResponse[rec.ResponseID]; ok {
		existing := r.byID[id]
		if existing.Text == rec.Text {
			return UpsertResult{Recommendation: existing, Outcome: OutcomeUnchanged}
		}
		existing.Text = rec.Text
		existing.UpdatedAt = rec.UpdatedAt
		if existing.UpdatedAt.IsZero() {
			existing.UpdatedAt = time.Now().UTC()
		}
		r.byID[id] = existing
		return UpsertResult{Recommendation: existing, Outcome: OutcomeUpdated}
	}

	if _, taken := r.byID[rec.ID]; taken {
		return UpsertResult{Err: ErrInvalidInput}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	r.byID[rec.ID] = rec
	r.byResponse[rec.ResponseID] = rec.ID
	return UpsertResult{Recommendation: rec, Outcome: OutcomeCreated}
}

// GetByID returns a recommendation by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, recommendationID string) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[recommendationID]
	if !ok {
		return Recommendation{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) ListByPair(ctx context.Context, evaluationID, vendorID string) ([]Recommendation, error) {
	return r.list(ctx, func(rec Recommendation) bool {
		return rec.EvaluationID == evaluationID && rec.VendorID == vendorID
	})
}

func (r *MemoryRepo) ListByEvaluation(ctx context.Context, evaluationID string) ([]Recommendation, error) {
	return r.list(ctx, func(rec Recommendation) bool { return rec.EvaluationID == evaluationID })
}

func (r *MemoryRepo) ListByVendor(ctx context.Context, vendorID string) ([]Recommendation, error) {
	return r.list(ctx, func(rec Recommendation) bool { return rec.VendorID == vendorID })
}

// UpdateStatus sets the workflow status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, recommendationID string, status Status) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[recommendationID]
	if !ok {
		return Recommendation{}, ErrNotFound
	}
	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	r.byID[recommendationID] = rec
	return rec, nil
}

// list orders by priority, then creation time, then id.
func (r *MemoryRepo) list(ctx context.Context, match func(Recommendation) bool) ([]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Recommendation, 0)
	for _, rec := range r.byID {
		if match(rec) {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
