package media_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sokocrafts/sokoni/internal/blob"
	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/media"
	"github.com/sokocrafts/sokoni/internal/store"
)

const maxTestFileSize = 256

var (
	uploader = &claims.Principal{SubjectID: "user-1", Role: claims.RoleSeller}
	stranger = &claims.Principal{SubjectID: "user-2", Role: claims.RoleSeller}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceFixture struct {
	service *media.Service
	store   *store.MemoryAssetStore
	blobs   *blob.MemoryStore
	bus     *eventbus.InMemoryEventBus
	events  []eventbus.AssetEvent
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		store: store.NewMemoryAssetStore(),
		blobs: blob.NewMemoryStore(),
		bus:   eventbus.NewInMemoryEventBus(),
	}
	logger := discardLogger()

	f.service = media.NewService(
		f.store,
		f.blobs,
		eventbus.NewAssetEventBus(f.bus, logger),
		maxTestFileSize,
		[]string{"image/png", "image/jpeg"},
		logger,
	)

	err := f.bus.Subscribe(context.Background(), eventbus.TopicAssetEvents, "test-observer",
		func(_ context.Context, body []byte) error {
			var event eventbus.AssetEvent
			if err := json.Unmarshal(body, &event); err != nil {
				return err
			}
			f.events = append(f.events, event)
			return nil
		})
	require.NoError(t, err)
	return f
}

func pngUpload(listingID string) media.UploadParams {
	return media.UploadParams{
		Data:        []byte("png bytes"),
		FileName:    "photo.png",
		ContentType: "image/png",
		ListingID:   listingID,
	}
}

func TestUploadStoresBlobAndRecord(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	asset, err := f.service.Upload(ctx, uploader, pngUpload("l1"))
	require.NoError(t, err)

	require.Equal(t, "l1", asset.ListingID)
	require.Equal(t, uploader.SubjectID, asset.UploadedBy)
	require.Equal(t, int64(len("png bytes")), asset.FileSize)
	require.Equal(t, "/uploads/"+asset.FileName, asset.StoragePath)
	require.True(t, f.blobs.Has(asset.FileName))

	saved, err := f.store.FindByID(ctx, asset.ID)
	require.NoError(t, err)
	require.Equal(t, asset.ID, saved.ID)

	require.Len(t, f.events, 1)
	require.Equal(t, eventbus.EventAssetUploaded, f.events[0].EventType)
	require.Equal(t, asset.ID, f.events[0].AssetID)
	require.Equal(t, asset.StoragePath, f.events[0].StoragePath)
}

func TestUploadRequiresAuthentication(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Upload(context.Background(), nil, pngUpload("l1"))
	require.ErrorIs(t, err, media.ErrUnauthenticated)
	require.Zero(t, f.blobs.Len())
}

func TestUploadValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	empty := pngUpload("l1")
	empty.Data = nil
	_, err := f.service.Upload(ctx, uploader, empty)
	require.ErrorIs(t, err, media.ErrEmptyFile)

	huge := pngUpload("l1")
	huge.Data = make([]byte, maxTestFileSize+1)
	_, err = f.service.Upload(ctx, uploader, huge)
	require.ErrorIs(t, err, media.ErrFileTooLarge)

	pdf := pngUpload("l1")
	pdf.ContentType = "application/pdf"
	_, err = f.service.Upload(ctx, uploader, pdf)
	require.ErrorIs(t, err, media.ErrUnsupportedType)

	// A rejected upload never reaches the blob store.
	require.Zero(t, f.blobs.Len())
	require.Empty(t, f.events)
}

func TestUploadAcceptsFileAtExactSizeLimit(t *testing.T) {
	f := newServiceFixture(t)

	exact := pngUpload("l1")
	exact.Data = make([]byte, maxTestFileSize)
	_, err := f.service.Upload(context.Background(), uploader, exact)
	require.NoError(t, err)
}

func TestDeleteRemovesBlobAndPublishes(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	asset, err := f.service.Upload(ctx, uploader, pngUpload("l1"))
	require.NoError(t, err)
	f.events = nil

	require.NoError(t, f.service.Delete(ctx, uploader, asset.ID))
	require.False(t, f.blobs.Has(asset.FileName))

	_, err = f.store.FindByID(ctx, asset.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.Len(t, f.events, 1)
	require.Equal(t, eventbus.EventAssetDeleted, f.events[0].EventType)
	require.Equal(t, asset.ID, f.events[0].AssetID)
	require.Equal(t, "l1", f.events[0].ListingID)
}

func TestDeleteEnforcesUploaderOwnership(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	asset, err := f.service.Upload(ctx, uploader, pngUpload("l1"))
	require.NoError(t, err)

	require.ErrorIs(t, f.service.Delete(ctx, stranger, asset.ID), media.ErrNotUploader)
	require.ErrorIs(t, f.service.Delete(ctx, nil, asset.ID), media.ErrUnauthenticated)

	// The asset is untouched.
	_, err = f.store.FindByID(ctx, asset.ID)
	require.NoError(t, err)
}

func TestDeleteMissingAsset(t *testing.T) {
	f := newServiceFixture(t)

	err := f.service.Delete(context.Background(), uploader, "no-such-asset")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteRemovesRecordWhenBlobDeleteFails(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	asset, err := f.service.Upload(ctx, uploader, pngUpload("l1"))
	require.NoError(t, err)

	failing := &failingBlobStore{MemoryStore: f.blobs}
	logger := discardLogger()
	service := media.NewService(f.store, failing, eventbus.NewAssetEventBus(f.bus, logger),
		maxTestFileSize, []string{"image/png"}, logger)

	require.NoError(t, service.Delete(ctx, uploader, asset.ID))

	_, err = f.store.FindByID(ctx, asset.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListByListingAndUploader(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Upload(ctx, uploader, pngUpload("l1"))
	require.NoError(t, err)
	_, err = f.service.Upload(ctx, uploader, pngUpload("l2"))
	require.NoError(t, err)
	_, err = f.service.Upload(ctx, stranger, pngUpload("l1"))
	require.NoError(t, err)

	byListing, err := f.service.ListByListing(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, byListing, 2)

	byUploader, err := f.service.ListByUploader(ctx, uploader.SubjectID)
	require.NoError(t, err)
	require.Len(t, byUploader, 2)
	for _, asset := range byUploader {
		require.Equal(t, uploader.SubjectID, asset.UploadedBy)
	}
}
