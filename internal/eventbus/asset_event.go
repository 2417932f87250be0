package eventbus

// TopicAssetEvents carries asset lifecycle envelopes, partitioned by
// asset id.
const TopicAssetEvents = "asset-events"

const (
	EventAssetUploaded = "ASSET_UPLOADED"
	EventAssetDeleted  = "ASSET_DELETED"
)

// AssetEvent is the wire shape of one asset lifecycle event.
type AssetEvent struct {
	EventType   string `json:"eventType"`
	AssetID     string `json:"assetId"`
	ListingID   string `json:"listingId,omitempty"`
	StoragePath string `json:"storagePath,omitempty"`
}
