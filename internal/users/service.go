package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Roles a profile may carry.
const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Upsert validates and stores a profile. Vendor profiles must name their vendor.
func (s *Service) Upsert(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.TrimSpace(user.Email)
	user.VendorID = strings.TrimSpace(user.VendorID)
	user.Role = strings.ToLower(strings.TrimSpace(user.Role))
	if user.Role == "" {
		user.Role = RoleVendor
	}
	if user.ID == "" || user.Email == "" {
		return User{}, fmt.Errorf("%w: user id and email are required", ErrInvalidInput)
	}
	switch user.Role {
	case RoleAdmin:
	case RoleVendor:
		if user.VendorID == "" {
			return User{}, fmt.Errorf("%w: vendor profiles need a vendor_id", ErrInvalidInput)
		}
	default:
		return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, user.Role)
	}
	if err := s.Repo.Upsert(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]User, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("users service not configured")
	}
	return s.Repo.ListByVendor(ctx, vendorID)
}

// FirstProfileIDForVendor returns the oldest profile linked to the vendor,
// or "" when there is none.
func (s *Service) FirstProfileIDForVendor(ctx context.Context, vendorID string) (string, error) {
	profiles, err := s.ListByVendor(ctx, vendorID)
	if err != nil {
		return "", err
	}
	if len(profiles) == 0 {
		return "", nil
	}
	return profiles[0].ID, nil
}
