package users

import "context"

// Repo stores profiles. Upsert keeps the original CreatedAt of an existing
// profile.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	// ListByVendor returns a vendor's profiles, oldest first.
	ListByVendor(ctx context.Context, vendorID string) ([]User, error)
}
