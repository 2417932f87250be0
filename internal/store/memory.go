package store

import (
	"context"
	"sort"
	"sync"
)

// In-memory store implementations used by tests and local development.
// They honor the same contract as the postgres stores: FindByID misses
// return ErrNotFound, Delete of an absent record succeeds.

type MemoryIdentityStore struct {
	mu         sync.RWMutex
	identities map[string]Identity
}

func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{identities: make(map[string]Identity)}
}

func (s *MemoryIdentityStore) Save(_ context.Context, identity *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.ID] = *identity
	return nil
}

func (s *MemoryIdentityStore) FindByID(_ context.Context, id string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &identity, nil
}

func (s *MemoryIdentityStore) FindByEmail(_ context.Context, email string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, identity := range s.identities {
		if identity.Email == email {
			found := identity
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryIdentityStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, identity := range s.identities {
		if identity.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryIdentityStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, id)
	return nil
}

type MemoryListingStore struct {
	mu       sync.RWMutex
	listings map[string]Listing
}

func NewMemoryListingStore() *MemoryListingStore {
	return &MemoryListingStore{listings: make(map[string]Listing)}
}

func (s *MemoryListingStore) Save(_ context.Context, listing *Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *listing
	stored.AssetIDs = append([]string(nil), listing.AssetIDs...)
	s.listings[listing.ID] = stored
	return nil
}

func (s *MemoryListingStore) FindByID(_ context.Context, id string) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	listing.AssetIDs = append([]string(nil), listing.AssetIDs...)
	return &listing, nil
}

func (s *MemoryListingStore) FindAll(_ context.Context) ([]Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listings := make([]Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		listings = append(listings, listing)
	}
	sortListings(listings)
	return listings, nil
}

func (s *MemoryListingStore) FindByOwner(_ context.Context, ownerID string) ([]Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var listings []Listing
	for _, listing := range s.listings {
		if listing.OwnerID == ownerID {
			listings = append(listings, listing)
		}
	}
	sortListings(listings)
	return listings, nil
}

func (s *MemoryListingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listings, id)
	return nil
}

func sortListings(listings []Listing) {
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].CreatedAt.Equal(listings[j].CreatedAt) {
			return listings[i].ID < listings[j].ID
		}
		return listings[i].CreatedAt.Before(listings[j].CreatedAt)
	})
}

type MemoryAssetStore struct {
	mu     sync.RWMutex
	assets map[string]Asset
}

func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{assets: make(map[string]Asset)}
}

func (s *MemoryAssetStore) Save(_ context.Context, asset *Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[asset.ID] = *asset
	return nil
}

func (s *MemoryAssetStore) FindByID(_ context.Context, id string) (*Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &asset, nil
}

func (s *MemoryAssetStore) FindByListing(_ context.Context, listingID string) ([]Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var assets []Asset
	for _, asset := range s.assets {
		if asset.ListingID == listingID {
			assets = append(assets, asset)
		}
	}
	sortAssets(assets)
	return assets, nil
}

func (s *MemoryAssetStore) FindByUploader(_ context.Context, userID string) ([]Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var assets []Asset
	for _, asset := range s.assets {
		if asset.UploadedBy == userID {
			assets = append(assets, asset)
		}
	}
	sortAssets(assets)
	return assets, nil
}

func (s *MemoryAssetStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assets, id)
	return nil
}

func sortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].CreatedAt.Equal(assets[j].CreatedAt) {
			return assets[i].ID < assets[j].ID
		}
		return assets[i].CreatedAt.Before(assets[j].CreatedAt)
	})
}
