// Package handlers exposes the three services over HTTP. Each handler
// owns its routes, decodes its own request bodies and maps service
// errors onto statuses; the shared middleware stack has already
// resolved the caller's principal by the time a handler runs.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// identityResponse is the wire shape of an account. The password hash
// never leaves the service.
type identityResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      claims.Role `json:"role"`
	Avatar    string      `json:"avatar,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toIdentityResponse(identity *store.Identity) identityResponse {
	return identityResponse{
		ID:        identity.ID,
		Name:      identity.Name,
		Email:     identity.Email,
		Role:      identity.Role,
		Avatar:    identity.Avatar,
		CreatedAt: identity.CreatedAt,
		UpdatedAt: identity.UpdatedAt,
	}
}

type listingResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	OwnerID     string    `json:"ownerId"`
	AssetIDs    []string  `json:"assetIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toListingResponse(listing *store.Listing) listingResponse {
	assetIDs := listing.AssetIDs
	if assetIDs == nil {
		assetIDs = []string{}
	}
	return listingResponse{
		ID:          listing.ID,
		Name:        listing.Name,
		Description: listing.Description,
		Price:       listing.Price,
		Quantity:    listing.Quantity,
		OwnerID:     listing.OwnerID,
		AssetIDs:    assetIDs,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}

func toListingResponses(listings []store.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, toListingResponse(&listings[i]))
	}
	return out
}

type assetResponse struct {
	ID          string    `json:"id"`
	StoragePath string    `json:"storagePath"`
	ListingID   string    `json:"listingId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	FileSize    int64     `json:"fileSize"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toAssetResponse(asset *store.Asset) assetResponse {
	return assetResponse{
		ID:          asset.ID,
		StoragePath: asset.StoragePath,
		ListingID:   asset.ListingID,
		FileName:    asset.FileName,
		ContentType: asset.ContentType,
		FileSize:    asset.FileSize,
		UploadedBy:  asset.UploadedBy,
		CreatedAt:   asset.CreatedAt,
	}
}

func toAssetResponses(assets []store.Asset) []assetResponse {
	out := make([]assetResponse, 0, len(assets))
	for i := range assets {
		out = append(out, toAssetResponse(&assets[i]))
	}
	return out
}
