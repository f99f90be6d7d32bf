package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service holds vendor business rules.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// CreateInput is the payload for a new vendor.
type CreateInput struct {
	ID             string  `json:"vendor_id"`
	Name           string  `json:"name"`
	ContactEmail   string  `json:"contact_email"`
	OwnerProfileID *string `json:"owner_profile_id"`
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil {
		return errors.New("vendors service not configured")
	}
	return nil
}

// Create stores a vendor. A caller-supplied id is kept so vendors can be
// keyed by an external identifier.
func (s *Service) Create(ctx context.Context, in CreateInput) (Vendor, error) {
	if err := s.ready(); err != nil {
		return Vendor{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Vendor{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	vendor := Vendor{
		ID:             id,
		Name:           name,
		ContactEmail:   strings.TrimSpace(in.ContactEmail),
		OwnerProfileID: normalizeOwner(in.OwnerProfileID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, vendor); err != nil {
		return Vendor{}, err
	}
	return vendor, nil
}

func (s *Service) Get(ctx context.Context, vendorID string) (Vendor, error) {
	if err := s.ready(); err != nil {
		return Vendor{}, err
	}
	return s.Repo.GetByID(ctx, vendorID)
}

func (s *Service) List(ctx context.Context) ([]Vendor, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx)
}

// Exists reports whether the vendor is known.
func (s *Service) Exists(ctx context.Context, vendorID string) (bool, error) {
	_, err := s.Get(ctx, vendorID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// SetOwner changes the profile new recommendations are assigned to. A nil
// or blank owner clears it.
func (s *Service) SetOwner(ctx context.Context, vendorID string, ownerProfileID *string) (Vendor, error) {
	if err := s.ready(); err != nil {
		return Vendor{}, err
	}
	return s.Repo.UpdateOwner(ctx, vendorID, normalizeOwner(ownerProfileID))
}

func normalizeOwner(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
