package vendors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfiles struct {
	id    string
	err   error
	calls int
}

func (s *stubProfiles) FirstProfileIDForVendor(context.Context, string) (string, error) {
	s.calls++
	return s.id, s.err
}

type countingResolver struct {
	owner string
	err   error
	calls int
}

func (r *countingResolver) OwnerProfileID(context.Context, string) (string, error) {
	r.calls++
	return r.owner, r.err
}

func TestDirectoryPrefersVendorOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	svc := NewService(repo)
	owner := "profile-owner"
	_, err := svc.Create(ctx, CreateInput{ID: "vendor-1", Name: "Acme", OwnerProfileID: &owner})
	require.NoError(t, err)

	profiles := &stubProfiles{id: "profile-member"}
	got, err := Directory{Vendors: repo, Profiles: profiles}.OwnerProfileID(ctx, "vendor-1")
	require.NoError(t, err)
	assert.Equal(t, "profile-owner", got)
	assert.Zero(t, profiles.calls)
}

func TestDirectoryFallsBackToVendorProfiles(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	_, err := NewService(repo).Create(ctx, CreateInput{ID: "vendor-1", Name: "Acme"})
	require.NoError(t, err)

	dir := Directory{Vendors: repo, Profiles: &stubProfiles{id: "profile-member"}}
	got, err := dir.OwnerProfileID(ctx, "vendor-1")
	require.NoError(t, err)
	assert.Equal(t, "profile-member", got)

	got, err = dir.OwnerProfileID(ctx, "vendor-unknown")
	require.NoError(t, err)
	assert.Equal(t, "profile-member", got, "unknown vendors still consult profiles")

	got, err = Directory{Vendors: repo}.OwnerProfileID(ctx, "vendor-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCachedDirectoryCachesResolvedOwners(t *testing.T) {
	ctx := context.Background()
	next := &countingResolver{owner: "profile-1"}
	dir := NewCachedDirectory(next, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := dir.OwnerProfileID(ctx, "vendor-1")
		require.NoError(t, err)
		assert.Equal(t, "profile-1", got)
	}
	assert.Equal(t, 1, next.calls)

	dir.Invalidate("vendor-1")
	next.owner = "profile-2"
	got, err := dir.OwnerProfileID(ctx, "vendor-1")
	require.NoError(t, err)
	assert.Equal(t, "profile-2", got)
	assert.Equal(t, 2, next.calls)
}

func TestCachedDirectorySkipsErrorsAndEmpty(t *testing.T) {
	ctx := context.Background()
	next := &countingResolver{err: errors.New("db down")}
	dir := NewCachedDirectory(next, time.Minute)

	_, err := dir.OwnerProfileID(ctx, "vendor-1")
	require.Error(t, err)
	next.err = nil
	got, err := dir.OwnerProfileID(ctx, "vendor-1")
	require.NoError(t, err)
	assert.Empty(t, got)
	_, _ = dir.OwnerProfileID(ctx, "vendor-1")
	assert.Equal(t, 3, next.calls)
}

func TestServiceSetOwnerClearsBlank(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())
	_, err := svc.Create(ctx, CreateInput{ID: "vendor-1", Name: "Acme"})
	require.NoError(t, err)

	blank := "  "
	vendor, err := svc.SetOwner(ctx, "vendor-1", &blank)
	require.NoError(t, err)
	assert.Nil(t, vendor.OwnerProfileID)

	_, err = svc.Create(ctx, CreateInput{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	ok, err := svc.Exists(ctx, "vendor-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
