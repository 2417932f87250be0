package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/store"
)

func TestMemoryIdentityStoreContract(t *testing.T) {
	s := store.NewMemoryIdentityStore()
	ctx := context.Background()

	_, err := s.FindByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	identity := &store.Identity{
		ID:    "u1",
		Name:  "Wanjiru",
		Email: "wanjiru@example.com",
		Role:  claims.RoleSeller,
	}
	require.NoError(t, s.Save(ctx, identity))

	found, err := s.FindByEmail(ctx, "wanjiru@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", found.ID)

	exists, err := s.ExistsByEmail(ctx, "wanjiru@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = s.ExistsByEmail(ctx, "someone@example.com")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, s.Delete(ctx, "u1"))
	// Deleting an already-absent record is still a success.
	require.NoError(t, s.Delete(ctx, "u1"))

	_, err = s.FindByID(ctx, "u1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryListingStoreFindByOwner(t *testing.T) {
	s := store.NewMemoryListingStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"l1", "l2", "l3"} {
		owner := "u1"
		if id == "l3" {
			owner = "u2"
		}
		require.NoError(t, s.Save(ctx, &store.Listing{
			ID:        id,
			Name:      "listing " + id,
			OwnerID:   owner,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	owned, err := s.FindByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	require.Equal(t, "l1", owned[0].ID)
	require.Equal(t, "l2", owned[1].ID)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, s.Delete(ctx, "l1"))
	owned, err = s.FindByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
}

func TestMemoryListingStoreCopiesAssetIDs(t *testing.T) {
	s := store.NewMemoryListingStore()
	ctx := context.Background()

	listing := &store.Listing{ID: "l1", OwnerID: "u1", AssetIDs: []string{"a1"}}
	require.NoError(t, s.Save(ctx, listing))

	// Mutating the caller's slice must not leak into the store.
	listing.AssetIDs[0] = "changed"

	found, err := s.FindByID(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, []string{"a1"}, found.AssetIDs)
}

func TestMemoryAssetStoreContract(t *testing.T) {
	s := store.NewMemoryAssetStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &store.Asset{ID: "a1", ListingID: "l1", UploadedBy: "u1"}))
	require.NoError(t, s.Save(ctx, &store.Asset{ID: "a2", ListingID: "l1", UploadedBy: "u2"}))
	require.NoError(t, s.Save(ctx, &store.Asset{ID: "a3", ListingID: "l2", UploadedBy: "u1"}))

	byListing, err := s.FindByListing(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, byListing, 2)

	byUploader, err := s.FindByUploader(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, byUploader, 2)

	require.NoError(t, s.Delete(ctx, "a1"))
	require.NoError(t, s.Delete(ctx, "a1"))

	_, err = s.FindByID(ctx, "a1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
