// Package catalog implements listing management for the catalog
// service, including the authorization checkpoints on every mutation
// and the cascade that reacts to identity deletions.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/sokocrafts/sokoni/internal/cache"
	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/store"
)

var (
	// ErrUnauthenticated is returned when an operation that needs an
	// identity is attempted anonymously.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrRoleForbidden is returned when the caller's role does not
	// permit managing listings.
	ErrRoleForbidden = errors.New("only sellers can manage listings")
	// ErrNotOwner is returned when the caller tries to mutate a
	// listing owned by someone else. Distinct from ErrRoleForbidden so
	// callers can tell the two rejections apart.
	ErrNotOwner = errors.New("listing is owned by another user")
	// ErrInvalidListing is returned for listings violating the price
	// or quantity invariants.
	ErrInvalidListing = errors.New("invalid listing")
)

// Service is the catalog service's application core.
type Service struct {
	store  store.ListingStore
	events *eventbus.ListingEventBus
	cache  *cache.ListingCache
	logger *slog.Logger
}

func NewService(
	listingStore store.ListingStore,
	events *eventbus.ListingEventBus,
	listingCache *cache.ListingCache,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:  listingStore,
		events: events,
		cache:  listingCache,
		logger: logger,
	}
}

// requireSeller authorizes a listing mutation. The role check is
// exhaustive over the closed role set; anything outside it is rejected.
func requireSeller(principal *claims.Principal) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	switch principal.Role {
	case claims.RoleSeller:
		return nil
	case claims.RoleBuyer:
		return ErrRoleForbidden
	default:
		return ErrRoleForbidden
	}
}

func validateListing(price float64, quantity int) error {
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidListing)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidListing)
	}
	return nil
}

// CreateParams carries a listing creation request.
type CreateParams struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
}

// Create stores a new listing owned by the principal and publishes
// LISTING_CREATED after the save has committed.
func (s *Service) Create(ctx context.Context, principal *claims.Principal, p CreateParams) (*store.Listing, error) {
	if err := requireSeller(principal); err != nil {
		return nil, err
	}
	if err := validateListing(p.Price, p.Quantity); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing := store.Listing{
		ID:          uuid.NewString(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		OwnerID:     principal.SubjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Save(ctx, &listing); err != nil {
		return nil, fmt.Errorf("failed to save listing: %w", err)
	}

	s.logger.Info("Listing created",
		slog.String("listing_id", listing.ID),
		slog.String("owner_id", listing.OwnerID),
	)

	if err := s.events.PublishListingCreated(ctx, listing.ID, listing.OwnerID, listing.Name); err != nil {
		s.logger.Error("Failed to publish listing created event",
			slog.String("listing_id", listing.ID),
			slog.Any("error", err),
		)
	}

	return &listing, nil
}

// Get returns the listing for id, consulting the read cache first.
func (s *Service) Get(ctx context.Context, id string) (*store.Listing, error) {
	if listing, ok := s.cache.Get(ctx, id); ok {
		return listing, nil
	}

	listing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, listing)
	return listing, nil
}

// List returns all listings.
func (s *Service) List(ctx context.Context) ([]store.Listing, error) {
	return s.store.FindAll(ctx)
}

// ListByOwner returns the listings owned by ownerID.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]store.Listing, error) {
	return s.store.FindByOwner(ctx, ownerID)
}

// UpdateParams carries the mutable listing fields; nil means keep the
// current value.
type UpdateParams struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
}

// Update applies the given fields after the role and ownership checks.
func (s *Service) Update(ctx context.Context, principal *claims.Principal, id string, p UpdateParams) (*store.Listing, error) {
	if err := requireSeller(principal); err != nil {
		return nil, err
	}

	listing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != principal.SubjectID {
		return nil, ErrNotOwner
	}

	if p.Name != nil {
		listing.Name = *p.Name
	}
	if p.Description != nil {
		listing.Description = *p.Description
	}
	if p.Price != nil {
		listing.Price = *p.Price
	}
	if p.Quantity != nil {
		listing.Quantity = *p.Quantity
	}
	if err := validateListing(listing.Price, listing.Quantity); err != nil {
		return nil, err
	}
	listing.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	s.cache.Invalidate(ctx, id)

	s.logger.Info("Listing updated", slog.String("listing_id", id))
	return listing, nil
}

// Delete removes the listing after the role and ownership checks and
// publishes LISTING_DELETED once the delete has committed.
func (s *Service) Delete(ctx context.Context, principal *claims.Principal, id string) error {
	if err := requireSeller(principal); err != nil {
		return err
	}

	listing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != principal.SubjectID {
		return ErrNotOwner
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	s.cache.Invalidate(ctx, id)

	s.logger.Info("Listing deleted",
		slog.String("listing_id", id),
		slog.String("owner_id", listing.OwnerID),
	)

	if err := s.events.PublishListingDeleted(ctx, id, listing.OwnerID); err != nil {
		s.logger.Error("Failed to publish listing deleted event",
			slog.String("listing_id", id),
			slog.Any("error", err),
		)
	}
	return nil
}

// AttachAsset records an uploaded asset id on the listing. Only the
// owner may change the attachment list.
func (s *Service) AttachAsset(ctx context.Context, principal *claims.Principal, listingID, assetID string) error {
	return s.mutateAssets(ctx, principal, listingID, func(ids []string) []string {
		if slices.Contains(ids, assetID) {
			return ids
		}
		return append(ids, assetID)
	})
}

// DetachAsset removes an asset id from the listing.
func (s *Service) DetachAsset(ctx context.Context, principal *claims.Principal, listingID, assetID string) error {
	return s.mutateAssets(ctx, principal, listingID, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(id string) bool { return id == assetID })
	})
}

func (s *Service) mutateAssets(ctx context.Context, principal *claims.Principal, listingID string, apply func([]string) []string) error {
	if principal == nil {
		return ErrUnauthenticated
	}

	listing, err := s.store.FindByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != principal.SubjectID {
		return ErrNotOwner
	}

	listing.AssetIDs = apply(listing.AssetIDs)
	listing.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, listing); err != nil {
		return fmt.Errorf("failed to update listing assets: %w", err)
	}
	s.cache.Invalidate(ctx, listingID)
	return nil
}
