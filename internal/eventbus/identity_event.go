package eventbus

// TopicIdentityEvents carries identity lifecycle envelopes, partitioned
// by user id.
const TopicIdentityEvents = "identity-events"

// Event types recognized on the identity-events topic. Consumers must
// ignore values they do not recognize.
const (
	EventIdentityCreated = "IDENTITY_CREATED"
	EventIdentityDeleted = "IDENTITY_DELETED"
)

// IdentityEvent is the wire shape of one identity lifecycle event.
// Envelopes are immutable once published.
type IdentityEvent struct {
	EventType string `json:"eventType"`
	UserID    string `json:"userId"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
}
