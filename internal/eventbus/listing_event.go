package eventbus

// TopicListingEvents carries listing lifecycle envelopes, partitioned
// by listing id.
const TopicListingEvents = "listing-events"

const (
	EventListingCreated = "LISTING_CREATED"
	EventListingDeleted = "LISTING_DELETED"
)

// ListingEvent is the wire shape of one listing lifecycle event.
type ListingEvent struct {
	EventType string `json:"eventType"`
	ListingID string `json:"listingId"`
	UserID    string `json:"userId,omitempty"`
	Name      string `json:"name,omitempty"`
}
