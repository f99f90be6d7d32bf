package vendors

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores vendors in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	vendors map[string]Vendor
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{vendors: make(map[string]Vendor)}
}

func (r *MemoryRepo) Create(ctx context.Context, vendor Vendor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.vendors[vendor.ID]; exists {
		return ErrInvalidInput
	}
	r.vendors[vendor.ID] = vendor
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, vendorID string) (Vendor, error) {
	if err := ctx.Err(); err != nil {
		return Vendor{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	vendor, ok := r.vendors[vendorID]
	if !ok {
		return Vendor{}, ErrNotFound
	}
	return vendor, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Vendor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Vendor, 0, len(r.vendors))
	for _, vendor := range r.vendors {
		out = append(out, vendor)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) UpdateOwner(ctx context.Context, vendorID string, ownerProfileID *string) (Vendor, error) {
	if err := ctx.Err(); err != nil {
		return Vendor{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	vendor, ok := r.vendors[vendorID]
	if !ok {
		return Vendor{}, ErrNotFound
	}
	vendor.OwnerProfileID = ownerProfileID
	vendor.UpdatedAt = time.Now().UTC()
	r.vendors[vendorID] = vendor
	return vendor, nil
}

var _ Repo = (*MemoryRepo)(nil)
