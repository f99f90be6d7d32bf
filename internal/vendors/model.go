package vendors

import "time"

// Vendor is an organization that answers evaluations. OwnerProfileID names
// the profile that new recommendations are assigned to.
type Vendor struct {
	ID             string    `json:"vendor_id"`
	Name           string    `json:"name"`
	ContactEmail   string    `json:"contact_email"`
	OwnerProfileID *string   `json:"owner_profile_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
