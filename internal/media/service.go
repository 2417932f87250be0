// Package media implements asset upload, validation and deletion for
// the media service, including the cascade that reacts to listing
// deletions by removing attached assets and their blobs.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/sokocrafts/sokoni/internal/blob"
	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/store"
)

var (
	// ErrUnauthenticated is returned when an upload or delete is
	// attempted anonymously.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotUploader is returned when the caller tries to delete an
	// asset uploaded by someone else.
	ErrNotUploader = errors.New("asset was uploaded by another user")
	// ErrEmptyFile is returned for an upload without content.
	ErrEmptyFile = errors.New("file is empty")
	// ErrFileTooLarge is returned when the upload exceeds the
	// configured size limit.
	ErrFileTooLarge = errors.New("file size exceeds the maximum allowed limit")
	// ErrUnsupportedType is returned for a content type outside the
	// configured allow set.
	ErrUnsupportedType = errors.New("unsupported content type")
)

// Service is the media service's application core.
type Service struct {
	store        store.AssetStore
	blobs        blob.Store
	events       *eventbus.AssetEventBus
	maxFileSize  int64
	allowedTypes []string
	logger       *slog.Logger
}

func NewService(
	assetStore store.AssetStore,
	blobs blob.Store,
	events *eventbus.AssetEventBus,
	maxFileSize int64,
	allowedTypes []string,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:        assetStore,
		blobs:        blobs,
		events:       events,
		maxFileSize:  maxFileSize,
		allowedTypes: allowedTypes,
		logger:       logger,
	}
}

// UploadParams carries one upload request.
type UploadParams struct {
	Data        []byte
	FileName    string
	ContentType string
	ListingID   string
}

func (s *Service) validate(p UploadParams) error {
	if len(p.Data) == 0 {
		return ErrEmptyFile
	}
	if int64(len(p.Data)) > s.maxFileSize {
		return fmt.Errorf("%w of %d bytes: file is %d bytes", ErrFileTooLarge, s.maxFileSize, len(p.Data))
	}
	if !slices.Contains(s.allowedTypes, p.ContentType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, p.ContentType)
	}
	return nil
}

// Upload validates the file, stores its bytes in the blob store, then
// persists the asset record and publishes ASSET_UPLOADED after commit.
func (s *Service) Upload(ctx context.Context, principal *claims.Principal, p UploadParams) (*store.Asset, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	if err := s.validate(p); err != nil {
		s.logger.Warn("Rejected media upload",
			slog.String("listing_id", p.ListingID),
			slog.Any("error", err),
		)
		return nil, err
	}

	handle, err := s.blobs.Put(ctx, p.Data, p.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	asset := store.Asset{
		ID:          uuid.NewString(),
		StoragePath: "/uploads/" + handle,
		ListingID:   p.ListingID,
		FileName:    handle,
		ContentType: p.ContentType,
		FileSize:    int64(len(p.Data)),
		UploadedBy:  principal.SubjectID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.Save(ctx, &asset); err != nil {
		return nil, fmt.Errorf("failed to save asset: %w", err)
	}

	s.logger.Info("Asset uploaded",
		slog.String("asset_id", asset.ID),
		slog.String("listing_id", asset.ListingID),
	)

	if err := s.events.PublishAssetUploaded(ctx, asset.ID, asset.ListingID, asset.StoragePath); err != nil {
		s.logger.Error("Failed to publish asset uploaded event",
			slog.String("asset_id", asset.ID),
			slog.Any("error", err),
		)
	}

	return &asset, nil
}

// Get returns the asset for id, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*store.Asset, error) {
	return s.store.FindByID(ctx, id)
}

// ListByListing returns the assets attached to a listing.
func (s *Service) ListByListing(ctx context.Context, listingID string) ([]store.Asset, error) {
	return s.store.FindByListing(ctx, listingID)
}

// ListByUploader returns the assets uploaded by a user.
func (s *Service) ListByUploader(ctx context.Context, userID string) ([]store.Asset, error) {
	return s.store.FindByUploader(ctx, userID)
}

// Delete removes an asset on behalf of its uploader. The blob is
// deleted first; a blob-store failure is logged and the record is
// removed anyway, because a dangling metadata pointer can be retried
// while an orphaned blob with no record would leak forever.
func (s *Service) Delete(ctx context.Context, principal *claims.Principal, id string) error {
	if principal == nil {
		return ErrUnauthenticated
	}

	asset, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if asset.UploadedBy != principal.SubjectID {
		return ErrNotUploader
	}

	if err := s.blobs.Delete(ctx, asset.FileName); err != nil {
		s.logger.Error("Failed to delete blob, removing record anyway",
			slog.String("asset_id", id),
			slog.String("handle", asset.FileName),
			slog.Any("error", err),
		)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	s.logger.Info("Asset deleted", slog.String("asset_id", id))

	if err := s.events.PublishAssetDeleted(ctx, id, asset.ListingID); err != nil {
		s.logger.Error("Failed to publish asset deleted event",
			slog.String("asset_id", id),
			slog.Any("error", err),
		)
	}
	return nil
}
