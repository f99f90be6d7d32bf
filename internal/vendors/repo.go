package vendors

import "context"

// Repo defines persistence operations for vendors.
type Repo interface {
	Create(ctx context.Context, vendor Vendor) error
	GetByID(ctx context.Context, vendorID string) (Vendor, error)
	List(ctx context.Context) ([]Vendor, error)
	UpdateOwner(ctx context.Context, vendorID string, ownerProfileID *string) (Vendor, error)
}
