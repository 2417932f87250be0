package catalog_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sokocrafts/sokoni/internal/cache"
	"github.com/sokocrafts/sokoni/internal/catalog"
	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	seller      = &claims.Principal{SubjectID: "seller-1", Role: claims.RoleSeller}
	otherSeller = &claims.Principal{SubjectID: "seller-2", Role: claims.RoleSeller}
	buyer       = &claims.Principal{SubjectID: "buyer-1", Role: claims.RoleBuyer}
)

type fixture struct {
	service *catalog.Service
	store   *store.MemoryListingStore
	events  []eventbus.ListingEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{store: store.NewMemoryListingStore()}

	bus := eventbus.NewInMemoryEventBus()
	err := bus.Subscribe(context.Background(), eventbus.TopicListingEvents, "test-observer",
		func(_ context.Context, body []byte) error {
			var event eventbus.ListingEvent
			if err := json.Unmarshal(body, &event); err != nil {
				return err
			}
			f.events = append(f.events, event)
			return nil
		})
	require.NoError(t, err)

	logger := discardLogger()
	f.service = catalog.NewService(f.store, eventbus.NewListingEventBus(bus, logger), nil, logger)
	return f
}

func (f *fixture) mustCreate(t *testing.T, principal *claims.Principal) *store.Listing {
	t.Helper()
	listing, err := f.service.Create(context.Background(), principal, catalog.CreateParams{
		Name: "Kiondo basket", Description: "Handwoven", Price: 12.5, Quantity: 4,
	})
	require.NoError(t, err)
	return listing
}

func TestCreateRequiresSellerRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, buyer, catalog.CreateParams{Name: "x", Price: 1, Quantity: 1})
	require.ErrorIs(t, err, catalog.ErrRoleForbidden)

	// Anonymous callers fail with an authentication error, they never
	// reach the ownership logic.
	_, err = f.service.Create(ctx, nil, catalog.CreateParams{Name: "x", Price: 1, Quantity: 1})
	require.ErrorIs(t, err, catalog.ErrUnauthenticated)
}

func TestCreateValidatesPriceAndQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, seller, catalog.CreateParams{Name: "x", Price: 0, Quantity: 1})
	require.ErrorIs(t, err, catalog.ErrInvalidListing)

	_, err = f.service.Create(ctx, seller, catalog.CreateParams{Name: "x", Price: 1, Quantity: -1})
	require.ErrorIs(t, err, catalog.ErrInvalidListing)
}

func TestCreatePublishesListingCreated(t *testing.T) {
	f := newFixture(t)

	listing := f.mustCreate(t, seller)

	require.Len(t, f.events, 1)
	require.Equal(t, eventbus.EventListingCreated, f.events[0].EventType)
	require.Equal(t, listing.ID, f.events[0].ListingID)
	require.Equal(t, "seller-1", f.events[0].UserID)
}

func TestUpdateDistinguishesRoleAndOwnershipViolations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := f.mustCreate(t, seller)

	name := "renamed"

	_, err := f.service.Update(ctx, buyer, listing.ID, catalog.UpdateParams{Name: &name})
	require.ErrorIs(t, err, catalog.ErrRoleForbidden)

	_, err = f.service.Update(ctx, otherSeller, listing.ID, catalog.UpdateParams{Name: &name})
	require.ErrorIs(t, err, catalog.ErrNotOwner)

	updated, err := f.service.Update(ctx, seller, listing.ID, catalog.UpdateParams{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Name)
	require.Equal(t, "Handwoven", updated.Description)
}

func TestDeletePublishesListingDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := f.mustCreate(t, seller)

	require.ErrorIs(t, f.service.Delete(ctx, otherSeller, listing.ID), catalog.ErrNotOwner)

	require.NoError(t, f.service.Delete(ctx, seller, listing.ID))

	_, err := f.service.Get(ctx, listing.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.Len(t, f.events, 2)
	require.Equal(t, eventbus.EventListingDeleted, f.events[1].EventType)
	require.Equal(t, listing.ID, f.events[1].ListingID)

	// Direct delete of an absent listing surfaces not-found.
	require.ErrorIs(t, f.service.Delete(ctx, seller, listing.ID), store.ErrNotFound)
}

func TestAttachAndDetachAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	listing := f.mustCreate(t, seller)

	require.ErrorIs(t, f.service.AttachAsset(ctx, nil, listing.ID, "a1"), catalog.ErrUnauthenticated)
	require.ErrorIs(t, f.service.AttachAsset(ctx, otherSeller, listing.ID, "a1"), catalog.ErrNotOwner)

	require.NoError(t, f.service.AttachAsset(ctx, seller, listing.ID, "a1"))
	require.NoError(t, f.service.AttachAsset(ctx, seller, listing.ID, "a2"))
	// Attaching the same asset twice is a no-op.
	require.NoError(t, f.service.AttachAsset(ctx, seller, listing.ID, "a1"))

	found, err := f.service.Get(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "a2"}, found.AssetIDs)

	require.NoError(t, f.service.DetachAsset(ctx, seller, listing.ID, "a1"))
	found, err = f.service.Get(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a2"}, found.AssetIDs)
}

func TestGetUsesReadCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := discardLogger()
	listingCache := cache.NewListingCache(client, time.Minute, logger)
	listingStore := store.NewMemoryListingStore()
	bus := eventbus.NewInMemoryEventBus()
	service := catalog.NewService(listingStore, eventbus.NewListingEventBus(bus, logger), listingCache, logger)

	ctx := context.Background()
	listing, err := service.Create(ctx, seller, catalog.CreateParams{
		Name: "cached", Price: 2, Quantity: 1,
	})
	require.NoError(t, err)

	// First read populates the cache, so a second read survives the
	// record disappearing underneath it.
	_, err = service.Get(ctx, listing.ID)
	require.NoError(t, err)
	require.NoError(t, listingStore.Delete(ctx, listing.ID))

	cached, err := service.Get(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, "cached", cached.Name)

	// A mutation invalidates the entry and reads fall back to the store.
	listing2, err := service.Create(ctx, seller, catalog.CreateParams{Name: "other", Price: 2, Quantity: 1})
	require.NoError(t, err)
	_, err = service.Get(ctx, listing2.ID)
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, seller, listing2.ID))

	_, err = service.Get(ctx, listing2.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
