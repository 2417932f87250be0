package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sokocrafts/sokoni/internal/media"
	"github.com/sokocrafts/sokoni/internal/store"
)

type AssetHandler struct {
	Logger *slog.Logger
	// MaxUploadBytes bounds how much of a multipart body is buffered
	// before the service's own size check runs.
	MaxUploadBytes int64
	Service        *media.Service
}

func (ah *AssetHandler) RegisterHandlers(router *http.ServeMux) {
	router.HandleFunc("POST /assets", ah.UploadAsset)
	router.HandleFunc("GET /assets/{assetId}", ah.GetAsset)
	router.HandleFunc("DELETE /assets/{assetId}", ah.DeleteAsset)
	router.HandleFunc("GET /listings/{listingId}/assets", ah.ListAssetsByListing)
	router.HandleFunc("GET /users/{userId}/assets", ah.ListAssetsByUploader)
}

func (ah *AssetHandler) writeMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, media.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, media.ErrNotUploader):
		writeError(w, http.StatusForbidden, "You can only manage files you uploaded")
	case errors.Is(err, media.ErrEmptyFile):
		writeError(w, http.StatusBadRequest, "The uploaded file is empty")
	case errors.Is(err, media.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "The uploaded file is too large")
	case errors.Is(err, media.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, "Only image uploads are supported")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "File does not exist")
	default:
		ah.Logger.Error("Failed to serve asset request", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError,
			"We ran into a problem while servicing your request please try again later")
	}
}

// UploadAsset accepts a multipart form with a "file" part and a
// "listingId" field.
func (ah *AssetHandler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	// One megabyte of slack over the configured limit lets the
	// service report the precise size error instead of a parse error.
	r.Body = http.MaxBytesReader(w, r.Body, ah.MaxUploadBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please attach a file part named 'file'")
		return
	}
	defer file.Close()

	listingID := r.FormValue("listingId")
	if listingID == "" {
		writeError(w, http.StatusBadRequest, "Please provide the listingId field")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read the uploaded file")
		return
	}

	asset, err := ah.Service.Upload(r.Context(), principalOf(r), media.UploadParams{
		Data:        data,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		ListingID:   listingID,
	})
	if err != nil {
		ah.writeMediaError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssetResponse(asset))
}

func (ah *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := ah.Service.Get(r.Context(), r.PathValue("assetId"))
	if err != nil {
		ah.writeMediaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetResponse(asset))
}

func (ah *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := ah.Service.Delete(r.Context(), principalOf(r), r.PathValue("assetId")); err != nil {
		ah.writeMediaError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ah *AssetHandler) ListAssetsByListing(w http.ResponseWriter, r *http.Request) {
	assets, err := ah.Service.ListByListing(r.Context(), r.PathValue("listingId"))
	if err != nil {
		ah.writeMediaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetResponses(assets))
}

func (ah *AssetHandler) ListAssetsByUploader(w http.ResponseWriter, r *http.Request) {
	assets, err := ah.Service.ListByUploader(r.Context(), r.PathValue("userId"))
	if err != nil {
		ah.writeMediaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetResponses(assets))
}
