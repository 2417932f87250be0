package app

import (
	"context"
	"log/slog"

	"github.com/sokocrafts/sokoni/internal/blob"
	"github.com/sokocrafts/sokoni/internal/config"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/handlers"
	"github.com/sokocrafts/sokoni/internal/media"
	"github.com/sokocrafts/sokoni/internal/store"
)

// NewMedia assembles the media service: validated uploads onto the
// local blob store and the consumer that removes a deleted listing's
// assets.
func NewMedia(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*App, error) {
	app, err := newCore(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := blob.NewFileStore(cfg.MediaConfig.UploadDirectory)
	if err != nil {
		return nil, err
	}

	assetStore := store.NewPostgresAssetStore(app.pool)
	assetEvents := eventbus.NewAssetEventBus(app.bus, logger)

	service := media.NewService(
		assetStore,
		blobs,
		assetEvents,
		cfg.MediaConfig.MaxFileSizeBytes,
		cfg.AllowedMediaTypes(),
		logger,
	)

	handler := &handlers.AssetHandler{
		Logger:         logger,
		MaxUploadBytes: cfg.MediaConfig.MaxFileSizeBytes,
		Service:        service,
	}
	handler.RegisterHandlers(app.router)

	consumer := media.NewConsumer(assetStore, blobs, assetEvents, logger)
	app.consumers = append(app.consumers, consumer.Start)

	return app, nil
}
