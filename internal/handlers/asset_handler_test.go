package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sokocrafts/sokoni/internal/blob"
	"github.com/sokocrafts/sokoni/internal/claims"
	"github.com/sokocrafts/sokoni/internal/eventbus"
	"github.com/sokocrafts/sokoni/internal/handlers"
	"github.com/sokocrafts/sokoni/internal/media"
	"github.com/sokocrafts/sokoni/internal/middleware"
	"github.com/sokocrafts/sokoni/internal/store"
)

const assetSizeLimit = 1024

func newAssetServer(t *testing.T) (http.Handler, *claims.Codec) {
	t.Helper()

	logger := discardLogger()
	codec := claims.NewCodec(testSecret, 0)
	service := media.NewService(
		store.NewMemoryAssetStore(),
		blob.NewMemoryStore(),
		eventbus.NewAssetEventBus(eventbus.NewInMemoryEventBus(), logger),
		assetSizeLimit,
		[]string{"image/png", "image/jpeg"},
		logger,
	)

	router := http.NewServeMux()
	handler := &handlers.AssetHandler{
		Logger:         logger,
		MaxUploadBytes: assetSizeLimit,
		Service:        service,
	}
	handler.RegisterHandlers(router)

	stack := middleware.CreateStack(middleware.Authenticate(codec, logger))
	return stack(router), codec
}

func multipartUpload(t *testing.T, listingID, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	require.NoError(t, writer.WriteField("listingId", listingID))
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func uploadAsset(t *testing.T, server http.Handler, token, listingID, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, formContentType := multipartUpload(t, listingID, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/assets", body)
	req.Header.Set("Content-Type", formContentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	return rr
}

func TestUploadAndFetchAsset(t *testing.T) {
	server, codec := newAssetServer(t)
	token, err := codec.Issue("seller-1", claims.RoleSeller, time.Hour)
	require.NoError(t, err)

	rr := uploadAsset(t, server, token, "l1", "image/png", []byte("png bytes"))
	require.Equal(t, http.StatusCreated, rr.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "l1", created["listingId"])
	require.Equal(t, "seller-1", created["uploadedBy"])

	req := httptest.NewRequest(http.MethodGet, "/assets/"+created["id"].(string), nil)
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestUploadRejections(t *testing.T) {
	server, codec := newAssetServer(t)
	token, err := codec.Issue("seller-1", claims.RoleSeller, time.Hour)
	require.NoError(t, err)

	rr := uploadAsset(t, server, "", "l1", "image/png", []byte("png bytes"))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = uploadAsset(t, server, token, "l1", "application/pdf", []byte("%PDF"))
	require.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	rr = uploadAsset(t, server, token, "l1", "image/png", make([]byte, assetSizeLimit+1))
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rr = uploadAsset(t, server, token, "", "image/png", []byte("png bytes"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteAssetRequiresUploader(t *testing.T) {
	server, codec := newAssetServer(t)
	token, err := codec.Issue("seller-1", claims.RoleSeller, time.Hour)
	require.NoError(t, err)

	rr := uploadAsset(t, server, token, "l1", "image/png", []byte("png bytes"))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assetID := created["id"].(string)

	other, err := codec.Issue("seller-2", claims.RoleSeller, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, "/assets/"+assetID, nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/assets/"+assetID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
}
