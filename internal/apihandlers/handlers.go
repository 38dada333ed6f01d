package apihandlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"farmstand/internal/app"
	"farmstand/internal/draft"
	"farmstand/internal/models"
	"farmstand/internal/store"
	"farmstand/internal/vision"
)

// maxUploadBytes bounds image upload size.
const maxUploadBytes = 8 << 20

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(app *app.App) *APIHandler {
	return &APIHandler{App: app}
}

// DraftFromImageRequest is the JSON body of the draft endpoint.
type DraftFromImageRequest struct {
	ImageID string `json:"imageId"`
}

// DraftFromImageResponse is the draft endpoint's response payload.
type DraftFromImageResponse struct {
	DraftSuggestionID string                 `json:"draftSuggestionId"`
	ImageID           string                 `json:"imageId"`
	SuggestedFields   models.SuggestedFields `json:"suggestedFields"`
	Confidence        float64                `json:"confidence"`
	Reasons           []models.MatchReason   `json:"reasons"`
}

// DraftFromImageHandler runs the full pipeline for one image: resolve
// bytes, tag, match, synthesize, persist. Any stage failure aborts the
// request; a below-threshold match is a normal response, not an error.
func (h *APIHandler) DraftFromImageHandler(c *gin.Context) {
	var req DraftFromImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	imageID, err := uuid.Parse(req.ImageID)
	if err != nil {
		BadRequest(c, "Invalid imageId: "+req.ImageID)
		return
	}

	ctx := c.Request.Context()
	asset, err := h.App.ImageStore.GetImageAsset(ctx, imageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, "Image not found: "+req.ImageID)
		} else {
			Internal(c, fmt.Sprintf("DraftFromImageHandler: failed to resolve image: %v", err))
		}
		return
	}

	tags, err := h.App.VisionClient.GetTags(ctx, asset.Data)
	if err != nil {
		h.respondVisionError(c, err)
		return
	}

	result, err := h.App.Matcher.Match(ctx, tags, h.App.Config.Match.Threshold)
	if err != nil {
		Internal(c, fmt.Sprintf("DraftFromImageHandler: taxonomy matching failed: %v", err))
		return
	}

	suggestion, err := h.App.Synthesizer.Synthesize(ctx, draft.Params{
		ImageID:  imageID,
		OwnerID:  OwnerFromContext(c),
		Provider: h.App.VisionClient.Name(),
	}, result)
	if err != nil {
		Internal(c, fmt.Sprintf("DraftFromImageHandler: failed to persist draft: %v", err))
		return
	}

	c.JSON(http.StatusOK, DraftFromImageResponse{
		DraftSuggestionID: suggestion.ID.String(),
		ImageID:           imageID.String(),
		SuggestedFields:   suggestion.SuggestedFields,
		Confidence:        suggestion.Confidence,
		Reasons:           suggestion.Reasons,
	})
}

// respondVisionError maps the vision failure taxonomy onto HTTP statuses,
// keeping configuration and upstream failures distinguishable.
func (h *APIHandler) respondVisionError(c *gin.Context, err error) {
	var upstream *vision.UpstreamError
	switch {
	case errors.Is(err, vision.ErrNotConfigured):
		VisionUnavailable(c, "Image tagging service is not configured")
	case errors.As(err, &upstream):
		log.Errorf("Vision upstream failure: %v", err)
		VisionFailed(c, "Image tagging service failed")
	default:
		Internal(c, fmt.Sprintf("Unexpected tagging failure: %v", err))
	}
}

// UploadImageHandler stores an uploaded image and returns its reference.
func (h *APIHandler) UploadImageHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		BadRequest(c, "Missing image file in form field 'image'")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		BadRequest(c, fmt.Sprintf("Image too large (max %d bytes)", maxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		Internal(c, "Failed to open uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		Internal(c, "Failed to read uploaded file: "+err.Error())
		return
	}
	if len(data) > maxUploadBytes {
		BadRequest(c, fmt.Sprintf("Image too large (max %d bytes)", maxUploadBytes))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	asset := &models.ImageAsset{
		ID:          uuid.New(),
		OwnerID:     OwnerFromContext(c),
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	}
	if err := h.App.ImageStore.CreateImageAsset(c.Request.Context(), asset); err != nil {
		Internal(c, "Failed to store image: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imageId": asset.ID.String()})
}

// UpsertProduceItemRequest is the admin taxonomy upsert body. Optional
// fields left out of the JSON leave the stored values untouched.
type UpsertProduceItemRequest struct {
	Canonical   string             `json:"canonical"`
	Synonyms    []string           `json:"synonyms"`
	DefaultUnit *string            `json:"defaultUnit"`
	CommonUnits []string           `json:"commonUnits"`
	PriceHints  []models.PriceHint `json:"priceHints"`
	Priority    *int               `json:"priority"`
	Active      *bool              `json:"active"`
}

func (h *APIHandler) UpsertProduceItemHandler(c *gin.Context) {
	var req UpsertProduceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.Canonical == "" {
		BadRequest(c, "Missing required field: canonical")
		return
	}
	for _, unit := range req.CommonUnits {
		if !validUnit(unit) {
			BadRequest(c, "Unknown unit: "+unit)
			return
		}
	}
	if req.DefaultUnit != nil && !validUnit(*req.DefaultUnit) {
		BadRequest(c, "Unknown unit: "+*req.DefaultUnit)
		return
	}

	item, created, err := h.App.TaxonomyStore.UpsertProduceItem(c.Request.Context(), store.UpsertProduceItemParams{
		Canonical:   req.Canonical,
		Synonyms:    req.Synonyms,
		DefaultUnit: req.DefaultUnit,
		CommonUnits: req.CommonUnits,
		PriceHints:  req.PriceHints,
		Priority:    req.Priority,
		Active:      req.Active,
	})
	if err != nil {
		Internal(c, "Failed to upsert produce item: "+err.Error())
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toProduceItemResponse(item))
}

// AddSynonymsRequest is the body of the synonym-append endpoint.
type AddSynonymsRequest struct {
	Add []string `json:"add"`
}

func (h *APIHandler) AddSynonymsHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "Invalid produce item ID: "+c.Param("id"))
		return
	}

	var req AddSynonymsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Add) == 0 {
		BadRequest(c, "No synonyms provided")
		return
	}

	item, err := h.App.TaxonomyStore.AppendSynonyms(c.Request.Context(), id, req.Add)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Produce item not found with ID: %d", id))
		} else {
			Internal(c, "Failed to append synonyms: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, toProduceItemResponse(item))
}

func (h *APIHandler) ListProduceItemsHandler(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	items, err := h.App.TaxonomyStore.ListProduceItems(c.Request.Context(), activeOnly)
	if err != nil {
		Internal(c, "Failed to list produce items: "+err.Error())
		return
	}

	resp := make([]produceItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toProduceItemResponse(item))
	}
	c.JSON(http.StatusOK, resp)
}

type produceItemResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Canonical   string             `json:"canonical"`
	Synonyms    []string           `json:"synonyms"`
	DefaultUnit *string            `json:"defaultUnit"`
	CommonUnits []string           `json:"commonUnits"`
	PriceHints  []models.PriceHint `json:"priceHints"`
	Active      bool               `json:"active"`
	Priority    int                `json:"priority"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func toProduceItemResponse(item *models.ProduceItem) produceItemResponse {
	synonyms := item.Synonyms
	if synonyms == nil {
		synonyms = []string{}
	}
	commonUnits := item.CommonUnits
	if commonUnits == nil {
		commonUnits = []string{}
	}
	priceHints := item.PriceHints
	if priceHints == nil {
		priceHints = []models.PriceHint{}
	}
	return produceItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Canonical:   item.Canonical,
		Synonyms:    synonyms,
		DefaultUnit: item.DefaultUnit,
		CommonUnits: commonUnits,
		PriceHints:  priceHints,
		Active:      item.Active,
		Priority:    item.Priority,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func validUnit(unit string) bool {
	for _, known := range models.KnownUnits {
		if unit == known {
			return true
		}
	}
	return false
}
