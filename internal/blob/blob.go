// Package blob defines the abstract blob store owned by the media
// service. The core treats it as an opaque put/delete collaborator.
package blob

import "context"

// Store persists raw media bytes and returns an opaque handle for them.
type Store interface {
	// Put stores the bytes and returns the handle they are retrievable
	// under. originalName is only consulted for its file extension.
	Put(ctx context.Context, data []byte, originalName string) (string, error)
	// Delete removes the blob behind the handle. Deleting an absent
	// blob is a success.
	Delete(ctx context.Context, handle string) error
}
