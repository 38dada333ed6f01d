package store

import (
	"context"

	"github.com/google/uuid"

	"farmstand/internal/models"
)

// UpsertProduceItemParams carries the administrative upsert input. Optional
// fields are pointers so an absent value leaves the stored one untouched.
type UpsertProduceItemParams struct {
	Canonical   string
	Synonyms    []string
	DefaultUnit *string
	CommonUnits []string
	PriceHints  []models.PriceHint
	Priority    *int
	Active      *bool
	CreatedBy   *string
}

// TaxonomyStore provides access to the produce taxonomy.
type TaxonomyStore interface {
	// UpsertProduceItem creates or updates an item, matching on the
	// canonical name case-insensitively. Synonyms are merged, not replaced.
	UpsertProduceItem(ctx context.Context, params UpsertProduceItemParams) (item *models.ProduceItem, created bool, err error)
	// AppendSynonyms adds synonyms to an existing item, deduplicated.
	AppendSynonyms(ctx context.Context, id int64, synonyms []string) (*models.ProduceItem, error)
	GetProduceItem(ctx context.Context, id int64) (*models.ProduceItem, error)
	// ListProduceItems returns items ordered by priority desc, canonical asc.
	ListProduceItems(ctx context.Context, activeOnly bool) ([]*models.ProduceItem, error)
	Ping(ctx context.Context) error
}

// DraftStore persists draft suggestions. Drafts are insert-only.
type DraftStore interface {
	CreateDraftSuggestion(ctx context.Context, draft *models.DraftSuggestion) error
	GetDraftSuggestion(ctx context.Context, id uuid.UUID) (*models.DraftSuggestion, error)
}

// ImageStore persists uploaded images and resolves image references back to
// raw bytes for the vision pipeline.
type ImageStore interface {
	CreateImageAsset(ctx context.Context, asset *models.ImageAsset) error
	GetImageAsset(ctx context.Context, id uuid.UUID) (*models.ImageAsset, error)
}
