package catalog

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sokocrafts/sokoni/internal/cache"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/store"
)

// ConsumerGroup is the catalog service's durable consumer group on the
// identity-events topic.
const ConsumerGroup = "catalog-service-group"

// Consumer reacts to identity lifecycle events. Its one job is the
// deletion cascade: when an account disappears, every listing it owned
// goes with it. The handler is idempotent because it operates on "all
// current matches" rather than a remembered list, so a redelivered
// envelope simply finds nothing left to delete.
type Consumer struct {
	store  store.ListingStore
	events *eventbus.ListingEventBus
	cache  *cache.ListingCache
	logger *slog.Logger
}

func NewConsumer(
	listingStore store.ListingStore,
	events *eventbus.ListingEventBus,
	listingCache *cache.ListingCache,
	logger *slog.Logger,
) *Consumer {
	return &Consumer{
		store:  listingStore,
		events: events,
		cache:  listingCache,
		logger: logger,
	}
}

// Start binds the consumer group to the identity-events topic.
func (c *Consumer) Start(ctx context.Context, bus eventbus.EventBus) error {
	return bus.Subscribe(ctx, eventbus.TopicIdentityEvents, ConsumerGroup, c.handle)
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var event eventbus.IdentityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// Malformed envelopes are dropped, never requeued: redelivery
		// would fail the same way forever.
		c.logger.Error("Dropping malformed identity event", slog.Any("error", err))
		return nil
	}

	c.logger.Info("Received identity event", slog.String("event_type", event.EventType))

	switch event.EventType {
	case eventbus.EventIdentityDeleted:
		return c.removeListingsForIdentity(ctx, event.UserID)
	default:
		// Unrecognized event types are ignored so the topic can evolve
		// without breaking older consumers.
		return nil
	}
}

// removeListingsForIdentity deletes every listing owned by the deleted
// account and announces each removal so the media service can cascade
// in turn. A store error aborts the pass and relies on redelivery to
// finish the remainder.
func (c *Consumer) removeListingsForIdentity(ctx context.Context, userID string) error {
	if userID == "" {
		c.logger.Error("Dropping identity deleted event without a user id")
		return nil
	}

	c.logger.Info("Deleting all listings for deleted identity", slog.String("user_id", userID))

	listings, err := c.store.FindByOwner(ctx, userID)
	if err != nil {
		return err
	}

	for _, listing := range listings {
		if err := c.store.Delete(ctx, listing.ID); err != nil {
			return err
		}
		c.cache.Invalidate(ctx, listing.ID)

		if err := c.events.PublishListingDeleted(ctx, listing.ID, userID); err != nil {
			c.logger.Error("Failed to publish listing deleted event during cascade",
				slog.String("listing_id", listing.ID),
				slog.Any("error", err),
			)
		}
	}

	c.logger.Info("Listings deleted for identity",
		slog.String("user_id", userID),
		slog.Int("count", len(listings)),
	)
	return nil
}
