package responses

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo stores responses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]Response
	byKey map[Key]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]Response),
		byKey: make(map[Key]string),
	}
}

// Upsert stores the response keyed by (evaluation, vendor, question).
func (r *MemoryRepo) Upsert(ctx context.Context, response Response) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if response.EvaluationID == "" || response.VendorID == "" || response.QuestionID == "" {
		return Response{}, ErrInvalidInput
	}
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	key := response.Key()
	if id, ok := r.byKey[key]; ok {
		existing := r.byID[id]
		existing.Answer = response.Answer
		existing.ResponseValue = response.ResponseValue
		existing.UpdatedAt = now
		r.byID[id] = existing
		return existing, nil
	}

	if response.ID == "" {
		response.ID = uuid.NewString()
	}
	response.CreatedAt = now
	response.UpdatedAt = now
	r.byID[response.ID] = response
	r.byKey[key] = response.ID
	return response, nil
}

// GetByID returns a response by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, responseID string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	response, ok := r.byID[responseID]
	if !ok {
		return Response{}, ErrNotFound
	}
	return response, nil
}

// ListByPair returns every response of a vendor for an evaluation ordered by question id.
func (r *MemoryRepo) ListByPair(ctx context.Context, evaluationID, vendorID string) ([]Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Response, 0)
	for _, response := range r.byID {
		if response.EvaluationID == evaluationID && response.VendorID == vendorID {
			out = append(out, response)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].QuestionID < out[j].QuestionID
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
