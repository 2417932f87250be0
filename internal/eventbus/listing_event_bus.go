package eventbus

import (
	"context"
	"log/slog"
)

// ListingEventBus provides a type-safe API for listing events on the
// listing-events topic, keyed by listing id. Both the catalog HTTP
// surface and the identity-deleted cascade publish through it, so a
// listing removed by either path announces itself the same way.
type ListingEventBus struct {
	bus    EventBus
	logger *slog.Logger
}

// NewListingEventBus creates a new ListingEventBus instance on top of
// the given transport.
func NewListingEventBus(bus EventBus, logger *slog.Logger) *ListingEventBus {
	return &ListingEventBus{bus: bus, logger: logger}
}

// PublishListingCreated publishes a listing created event.
func (b *ListingEventBus) PublishListingCreated(ctx context.Context, listingID, userID, name string) error {
	event := ListingEvent{
		EventType: EventListingCreated,
		ListingID: listingID,
		UserID:    userID,
		Name:      name,
	}

	b.logger.Info("Publishing listing created event",
		slog.String("topic", TopicListingEvents),
		slog.String("listing_id", listingID),
		slog.String("user_id", userID),
	)

	return b.bus.Publish(ctx, TopicListingEvents, listingID, event)
}

// PublishListingDeleted publishes a listing deleted event.
func (b *ListingEventBus) PublishListingDeleted(ctx context.Context, listingID, userID string) error {
	event := ListingEvent{
		EventType: EventListingDeleted,
		ListingID: listingID,
		UserID:    userID,
	}

	b.logger.Info("Publishing listing deleted event",
		slog.String("topic", TopicListingEvents),
		slog.String("listing_id", listingID),
		slog.String("user_id", userID),
	)

	return b.bus.Publish(ctx, TopicListingEvents, listingID, event)
}
