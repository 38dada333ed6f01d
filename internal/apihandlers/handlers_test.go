package apihandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmstand/internal/app"
	"farmstand/internal/config"
	"farmstand/internal/draft"
	"farmstand/internal/match"
	"farmstand/internal/models"
	"farmstand/internal/store"
	"farmstand/internal/vision"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStores struct {
	items      []*models.ProduceItem
	listErr    error
	upsertItem *models.ProduceItem
	upsertNew  bool
	upsertErr  error
	appendErr  error

	images    map[uuid.UUID]*models.ImageAsset
	drafts    []*models.DraftSuggestion
	createErr error
}

func newFakeStores() *fakeStores {
	return &fakeStores{images: make(map[uuid.UUID]*models.ImageAsset)}
}

func (f *fakeStores) UpsertProduceItem(ctx context.Context, params store.UpsertProduceItemParams) (*models.ProduceItem, bool, error) {
	if f.upsertErr != nil {
		return nil, false, f.upsertErr
	}
	return f.upsertItem, f.upsertNew, nil
}

func (f *fakeStores) AppendSynonyms(ctx context.Context, id int64, synonyms []string) (*models.ProduceItem, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	return f.upsertItem, nil
}

func (f *fakeStores) GetProduceItem(ctx context.Context, id int64) (*models.ProduceItem, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStores) ListProduceItems(ctx context.Context, activeOnly bool) ([]*models.ProduceItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.items, nil
}

func (f *fakeStores) Ping(ctx context.Context) error { return nil }

func (f *fakeStores) CreateDraftSuggestion(ctx context.Context, suggestion *models.DraftSuggestion) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.drafts = append(f.drafts, suggestion)
	return nil
}

func (f *fakeStores) GetDraftSuggestion(ctx context.Context, id uuid.UUID) (*models.DraftSuggestion, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStores) CreateImageAsset(ctx context.Context, asset *models.ImageAsset) error {
	f.images[asset.ID] = asset
	return nil
}

func (f *fakeStores) GetImageAsset(ctx context.Context, id uuid.UUID) (*models.ImageAsset, error) {
	asset, ok := f.images[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return asset, nil
}

type fakeVision struct {
	tags []vision.Tag
	err  error
}

func (f *fakeVision) Name() string { return "fake" }

func (f *fakeVision) GetTags(ctx context.Context, image []byte) ([]vision.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

func newTestRouter(stores *fakeStores, vc vision.Client, adminToken string) *gin.Engine {
	cfg := &config.Config{}
	cfg.Server.AdminToken = adminToken
	cfg.Match.Threshold = 0.6

	cache := match.NewTaxonomyCache(stores, 0, nil)
	testApp := &app.App{
		Config:        cfg,
		TaxonomyStore: stores,
		DraftStore:    stores,
		ImageStore:    stores,
		VisionClient:  vc,
		TaxonomyCache: cache,
		Matcher:       match.NewMatcher(cache),
		Synthesizer:   draft.NewSynthesizer(stores),
	}
	handler := NewAPIHandler(testApp)

	router := gin.New()
	v1 := router.Group("/api/v1")
	owned := v1.Group("")
	owned.Use(RequireOwner())
	owned.POST("/listings/draft-from-image", handler.DraftFromImageHandler)
	owned.POST("/images/upload", handler.UploadImageHandler)
	v1.GET("/produce-items", handler.ListProduceItemsHandler)
	admin := v1.Group("/admin")
	admin.Use(RequireOwner(), RequireAdmin(adminToken))
	admin.POST("/produce-items", handler.UpsertProduceItemHandler)
	admin.POST("/produce-items/:id/synonyms", handler.AddSynonymsHandler)
	return router
}

func strPtr(s string) *string { return &s }

func storedImage(stores *fakeStores) uuid.UUID {
	id := uuid.New()
	stores.images[id] = &models.ImageAsset{ID: id, OwnerID: "owner-1", Data: []byte("jpegbytes")}
	return id
}

func draftRequest(t *testing.T, imageID string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{"imageId": imageID})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings/draft-from-image", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Owner-ID", "owner-1")
	return req
}

func TestDraftFromImage(t *testing.T) {
	stores := newFakeStores()
	stores.items = []*models.ProduceItem{{
		ID:          7,
		Canonical:   "tomato",
		DefaultUnit: strPtr(models.UnitLb),
		Active:      true,
	}}
	imageID := storedImage(stores)

	vc := &fakeVision{tags: []vision.Tag{
		{Label: "tomato", Confidence: 0.92},
		{Label: "vegetable", Confidence: 0.88},
	}}
	router := newTestRouter(stores, vc, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, draftRequest(t, imageID.String()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DraftFromImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.DraftSuggestionID)
	assert.Equal(t, imageID.String(), resp.ImageID)
	require.NotNil(t, resp.SuggestedFields.ItemName)
	assert.Equal(t, "tomato", *resp.SuggestedFields.ItemName)
	assert.InDelta(t, 0.92, resp.Confidence, 1e-9)
	assert.Len(t, resp.Reasons, 2)

	require.Len(t, stores.drafts, 1)
	assert.Equal(t, "owner-1", stores.drafts[0].OwnerID)
	assert.Equal(t, "fake", stores.drafts[0].Provider)
}

func TestDraftFromImageNoMatchStillSucceeds(t *testing.T) {
	stores := newFakeStores()
	stores.items = []*models.ProduceItem{{ID: 1, Canonical: "tomato", Active: true}}
	imageID := storedImage(stores)

	vc := &fakeVision{tags: []vision.Tag{{Label: "bicycle", Confidence: 0.99}}}
	router := newTestRouter(stores, vc, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, draftRequest(t, imageID.String()))
	require.Equal(t, http.StatusOK, w.Code)

	var resp DraftFromImageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.SuggestedFields.ItemID)
	require.NotNil(t, resp.SuggestedFields.Title)
	assert.Equal(t, "Fresh local produce", *resp.SuggestedFields.Title)
	assert.Zero(t, resp.Confidence)
	require.Len(t, stores.drafts, 1)
}

func TestDraftFromImageRequiresOwner(t *testing.T) {
	router := newTestRouter(newFakeStores(), &fakeVision{}, "")

	req := draftRequest(t, uuid.New().String())
	req.Header.Del("X-Owner-ID")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDraftFromImageUnknownImage(t *testing.T) {
	router := newTestRouter(newFakeStores(), &fakeVision{}, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, draftRequest(t, uuid.New().String()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftFromImageInvalidImageID(t *testing.T) {
	router := newTestRouter(newFakeStores(), &fakeVision{}, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, draftRequest(t, "not-a-uuid"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDraftFromImageVisionNotConfigured(t *testing.T) {
	stores := newFakeStores()
	imageID := storedImage(stores)
	vc := &fakeVision{err: fmt.Errorf("key missing: %w", vision.ErrNotConfigured)}
	router := newTestRouter(stores, vc, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, draftRequest(t, imageID.String()))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, stores.drafts)
}

func TestDraftFromImageVisionUpstreamFailure(t *testing.T) {
	stores := newFakeStores()
	imageID := storedImage(stores)
	vc := &fakeVision{err: &vision.UpstreamError{Provider: "azure", Status: 429, Msg: "throttled"}}
	router := newTestRouter(stores, vc, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, draftRequest(t, imageID.String()))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, stores.drafts)
}

func TestDraftFromImageTaxonomyUnavailable(t *testing.T) {
	stores := newFakeStores()
	stores.listErr = errors.New("connection refused")
	imageID := storedImage(stores)
	vc := &fakeVision{tags: []vision.Tag{{Label: "tomato", Confidence: 0.9}}}
	router := newTestRouter(stores, vc, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, draftRequest(t, imageID.String()))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, stores.drafts)
}

func TestUploadImage(t *testing.T) {
	stores := newFakeStores()
	router := newTestRouter(stores, &fakeVision{}, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "tomato.jpg")
	require.NoError(t, err)
	fw.Write([]byte("jpegbytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Owner-ID", "owner-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	id, err := uuid.Parse(resp["imageId"])
	require.NoError(t, err)
	assert.Equal(t, "owner-1", stores.images[id].OwnerID)
}

func TestUpsertProduceItemAdminGate(t *testing.T) {
	stores := newFakeStores()
	stores.upsertItem = &models.ProduceItem{ID: 1, Canonical: "tomato", Active: true}
	stores.upsertNew = true
	router := newTestRouter(stores, &fakeVision{}, "admin-token")

	body := []byte(`{"canonical":"Tomato","synonyms":["cherry tomato"]}`)
	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/produce-items", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Owner-ID", "owner-1")
		return req
	}

	// Missing token.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, newReq())
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Wrong token.
	req := newReq()
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Correct token, new item.
	req = newReq()
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpsertProduceItemRejectsUnknownUnit(t *testing.T) {
	router := newTestRouter(newFakeStores(), &fakeVision{}, "admin-token")

	body := []byte(`{"canonical":"tomato","defaultUnit":"barrel"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/produce-items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Owner-ID", "owner-1")
	req.Header.Set("Authorization", "Bearer admin-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddSynonymsNotFound(t *testing.T) {
	stores := newFakeStores()
	stores.appendErr = store.ErrNotFound
	router := newTestRouter(stores, &fakeVision{}, "admin-token")

	body := []byte(`{"add":["roma"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/produce-items/42/synonyms", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Owner-ID", "owner-1")
	req.Header.Set("Authorization", "Bearer admin-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProduceItems(t *testing.T) {
	stores := newFakeStores()
	stores.items = []*models.ProduceItem{
		{ID: 1, Canonical: "tomato", Active: true},
		{ID: 2, Canonical: "cucumber", Active: true},
	}
	router := newTestRouter(stores, &fakeVision{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/produce-items?active=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "tomato", resp[0]["canonical"])
	// Nil slices serialize as empty arrays, not null.
	assert.Equal(t, []any{}, resp[0]["synonyms"])
}
