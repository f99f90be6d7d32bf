package vendors

import (
	"context"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ProfileLookup finds profiles that belong to a vendor.
type ProfileLookup interface {
	FirstProfileIDForVendor(ctx context.Context, vendorID string) (string, error)
}

// Directory resolves the profile responsible for a vendor: the vendor's
// owner when set, otherwise the first profile linked to the vendor.
type Directory struct {
	Vendors  Repo
	Profiles ProfileLookup
}

// OwnerProfileID returns "" when nobody can be resolved.
func (d Directory) OwnerProfileID(ctx context.Context, vendorID string) (string, error) {
	vendor, err := d.Vendors.GetByID(ctx, vendorID)
	switch {
	case err == nil:
		if vendor.OwnerProfileID != nil && strings.TrimSpace(*vendor.OwnerProfileID) != "" {
			return *vendor.OwnerProfileID, nil
		}
	case errors.Is(err, ErrNotFound):
	default:
		return "", err
	}
	if d.Profiles == nil {
		return "", nil
	}
	return d.Profiles.FirstProfileIDForVendor(ctx, vendorID)
}

// OwnerResolver is what CachedDirectory wraps.
type OwnerResolver interface {
	OwnerProfileID(ctx context.Context, vendorID string) (string, error)
}

// CachedDirectory memoizes resolved owners for ttl. Errors and unresolved
// lookups are not cached.
type CachedDirectory struct {
	next  OwnerResolver
	cache *gocache.Cache
}

// NewCachedDirectory wraps next with a TTL cache. A non-positive ttl
// disables caching.
func NewCachedDirectory(next OwnerResolver, ttl time.Duration) *CachedDirectory {
	d := &CachedDirectory{next: next}
	if ttl > 0 {
		d.cache = gocache.New(ttl, 2*ttl)
	}
	return d
}

func (d *CachedDirectory) OwnerProfileID(ctx context.Context, vendorID string) (string, error) {
	if d.cache != nil {
		if cached, ok := d.cache.Get(vendorID); ok {
			return cached.(string), nil
		}
	}
	owner, err := d.next.OwnerProfileID(ctx, vendorID)
	if err != nil || owner == "" || d.cache == nil {
		return owner, err
	}
	d.cache.SetDefault(vendorID, owner)
	return owner, nil
}

// Invalidate drops the cached owner of a vendor.
func (d *CachedDirectory) Invalidate(vendorID string) {
	if d.cache != nil {
		d.cache.Delete(vendorID)
	}
}
