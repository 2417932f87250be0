// Package store defines the keyed persistence collaborators for the
// three services. Each service exclusively owns its own collection: no
// two services ever write the same one.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/sokocrafts/sokoni/internal/claims"
)

// ErrNotFound is returned by direct lookups when no live record exists
// for an id. Delete never returns it: removing an already-absent record
// is defined as success, which is what keeps the cascade handlers
// naturally idempotent.
var ErrNotFound = errors.New("record not found")

// Identity is a user account, owned and mutated exclusively by the
// identity service.
type Identity struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         claims.Role
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Listing is a product offered by a seller, owned by the catalog
// service. OwnerID references a live identity at creation time but may
// dangle after an asynchronous account deletion until the cascade
// handler catches up.
type Listing struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Quantity    int
	OwnerID     string
	AssetIDs    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Asset is one uploaded media file, owned by the media service.
type Asset struct {
	ID          string
	StoragePath string
	ListingID   string
	FileName    string
	ContentType string
	FileSize    int64
	UploadedBy  string
	CreatedAt   time.Time
}

// IdentityStore persists identity accounts.
type IdentityStore interface {
	Save(ctx context.Context, identity *Identity) error
	FindByID(ctx context.Context, id string) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// ListingStore persists catalog listings.
type ListingStore interface {
	Save(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindAll(ctx context.Context) ([]Listing, error)
	FindByOwner(ctx context.Context, ownerID string) ([]Listing, error)
	Delete(ctx context.Context, id string) error
}

// AssetStore persists media asset records.
type AssetStore interface {
	Save(ctx context.Context, asset *Asset) error
	FindByID(ctx context.Context, id string) (*Asset, error)
	FindByListing(ctx context.Context, listingID string) ([]Asset, error)
	FindByUploader(ctx context.Context, userID string) ([]Asset, error)
	Delete(ctx context.Context, id string) error
}
