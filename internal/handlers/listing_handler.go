package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sokocrafts/sokoni/internal/catalog"
	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/middleware"
	"github.com/sokocrafts/sokoni/internal/store"
)

type ListingHandler struct {
	Logger  *slog.Logger
	Service *catalog.Service
}

func (lh *ListingHandler) RegisterHandlers(router *http.ServeMux) {
	router.HandleFunc("POST /listings", lh.CreateListing)
	router.HandleFunc("GET /listings", lh.ListListings)
	router.HandleFunc("GET /listings/{listingId}", lh.GetListing)
	router.HandleFunc("PUT /listings/{listingId}", lh.UpdateListing)
	router.HandleFunc("DELETE /listings/{listingId}", lh.DeleteListing)
	router.HandleFunc("GET /users/{userId}/listings", lh.ListListingsByOwner)
	router.HandleFunc("POST /listings/{listingId}/assets/{assetId}", lh.AttachAsset)
	router.HandleFunc("DELETE /listings/{listingId}/assets/{assetId}", lh.DetachAsset)
}

// principalOf returns the caller's principal, or nil for an anonymous
// request. The service layer owns the access decisions.
func principalOf(r *http.Request) *claims.Principal {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return nil
	}
	return &principal
}

// writeCatalogError maps the catalog service's sentinel errors onto
// HTTP statuses.
func (lh *ListingHandler) writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, catalog.ErrRoleForbidden):
		writeError(w, http.StatusForbidden, "Only sellers can manage listings")
	case errors.Is(err, catalog.ErrNotOwner):
		writeError(w, http.StatusForbidden, "You can only manage your own listings")
	case errors.Is(err, catalog.ErrInvalidListing):
		writeError(w, http.StatusBadRequest, "Price must be positive and quantity cannot be negative")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Listing does not exist")
	default:
		lh.Logger.Error("Failed to serve listing request", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError,
			"We ran into a problem while servicing your request please try again later")
	}
}

type createListingRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

func (lh *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var body createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "Please check your request body and try again")
		return
	}

	listing, err := lh.Service.Create(r.Context(), principalOf(r), catalog.CreateParams{
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
		Quantity:    body.Quantity,
	})
	if err != nil {
		lh.writeCatalogError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toListingResponse(listing))
}

func (lh *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := lh.Service.List(r.Context())
	if err != nil {
		lh.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponses(listings))
}

func (lh *ListingHandler) ListListingsByOwner(w http.ResponseWriter, r *http.Request) {
	listings, err := lh.Service.ListByOwner(r.Context(), r.PathValue("userId"))
	if err != nil {
		lh.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponses(listings))
}

func (lh *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := lh.Service.Get(r.Context(), r.PathValue("listingId"))
	if err != nil {
		lh.writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

type updateListingRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
}

func (lh *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	var body updateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Please check your request body and try again")
		return
	}

	listing, err := lh.Service.Update(r.Context(), principalOf(r), r.PathValue("listingId"),
		catalog.UpdateParams{
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			Quantity:    body.Quantity,
		})
	if err != nil {
		lh.writeCatalogError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(listing))
}

func (lh *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	if err := lh.Service.Delete(r.Context(), principalOf(r), r.PathValue("listingId")); err != nil {
		lh.writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (lh *ListingHandler) AttachAsset(w http.ResponseWriter, r *http.Request) {
	err := lh.Service.AttachAsset(r.Context(), principalOf(r),
		r.PathValue("listingId"), r.PathValue("assetId"))
	if err != nil {
		lh.writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (lh *ListingHandler) DetachAsset(w http.ResponseWriter, r *http.Request) {
	err := lh.Service.DetachAsset(r.Context(), principalOf(r),
		r.PathValue("listingId"), r.PathValue("assetId"))
	if err != nil {
		lh.writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
