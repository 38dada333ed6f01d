package models

import (
	"time"

	"github.com/google/uuid"
)

// Measurement units recognised by the taxonomy.
const (
	UnitKg    = "kg"
	UnitLb    = "lb"
	UnitCount = "count"
	UnitBunch = "bunch"
)

// KnownUnits lists every accepted measurement unit.
var KnownUnits = []string{UnitKg, UnitLb, UnitCount, UnitBunch}

// PriceHint is an advisory price attached to a taxonomy item. Hints are
// never authoritative; they only prefill a draft for human review.
type PriceHint struct {
	Unit            string  `json:"unit"`
	Currency        string  `json:"currency"`
	TypicalMin      float64 `json:"typicalMin"`
	TypicalMax      float64 `json:"typicalMax"`
	Suggested       float64 `json:"suggested"`
	Source          string  `json:"source"`
	ReferencePeriod string  `json:"referencePeriod"`
	Notes           string  `json:"notes,omitempty"`
}

// ProduceItem is one entry of the produce taxonomy: a canonical name plus
// the synonyms, unit hints, and price hints used during matching.
// Items are never deleted, only deactivated.
type ProduceItem struct {
	ID          int64       `db:"id"`
	Name        string      `db:"name"` // slug derived from Canonical
	Canonical   string      `db:"canonical"`
	Synonyms    []string    `db:"synonyms"`
	DefaultUnit *string     `db:"default_unit"`
	CommonUnits []string    `db:"common_units"`
	PriceHints  []PriceHint `db:"price_hints"`
	Active      bool        `db:"active"`
	Priority    int         `db:"priority"`
	CreatedBy   *string     `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

// MatchReason records one vision label that contributed to a match decision.
type MatchReason struct {
	Desc       string   `json:"desc"`
	Score      float64  `json:"score"`
	Topicality *float64 `json:"topicality,omitempty"`
}

// SuggestedFields is the set of listing fields a draft may prefill.
//
// Quantity, availability window, and fulfillment fields are deliberately
// absent from this struct: those must always come from the human poster,
// so the type itself cannot carry them.
type SuggestedFields struct {
	ItemID           *string        `json:"itemId"`
	ItemName         *string        `json:"itemName"`
	Title            *string        `json:"title"`
	Description      string         `json:"description"`
	Price            *float64       `json:"price"`
	Unit             *string        `json:"unit"`
	PriceUnit        *string        `json:"priceUnit"`
	UnitOptions      []string       `json:"unitOptions"`
	PriceUnitOptions []string       `json:"priceUnitOptions"`
	Quality          any            `json:"quality"` // reserved, always null
	Attributes       map[string]any `json:"attributes"`
}

// DraftSuggestion is the persisted audit record of one draft request.
// Records are immutable: a new request creates a new row, never an update.
type DraftSuggestion struct {
	ID              uuid.UUID       `db:"id"`
	ImageID         uuid.UUID       `db:"image_id"`
	OwnerID         string          `db:"owner_id"`
	SuggestedFields SuggestedFields `db:"suggested_fields"`
	Confidence      float64         `db:"confidence"`
	Reasons         []MatchReason   `db:"reasons"`
	Provider        string          `db:"provider"`
	CreatedAt       time.Time       `db:"created_at"`
}

// ImageAsset stores uploaded image bytes so the draft pipeline can resolve
// an image reference back to raw bytes.
type ImageAsset struct {
	ID          uuid.UUID `db:"id"`
	OwnerID     string    `db:"owner_id"`
	Filename    string    `db:"filename"`
	ContentType string    `db:"content_type"`
	Data        []byte    `db:"data"`
	CreatedAt   time.Time `db:"created_at"`
}
