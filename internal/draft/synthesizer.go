// Package draft turns a match result into suggested listing fields under
// a fixed safety policy and persists the suggestion for audit.
package draft

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"farmstand/internal/match"
	"farmstand/internal/models"
	"farmstand/internal/store"
)

const (
	fallbackTitle       = "Fresh local produce"
	fallbackDescription = "Freshly harvested local produce."
	callToAction        = "Add quantity, availability, and pickup details to complete your listing."
)

// Synthesizer builds and persists draft suggestions. Every prefilled value
// is either a direct taxonomy lookup or a fixed template; nothing is
// computed or inferred beyond that. Quantity, availability, and
// fulfillment fields cannot appear in a draft: the SuggestedFields type
// has no place for them, so the safety contract holds by construction.
type Synthesizer struct {
	drafts store.DraftStore
}

func NewSynthesizer(drafts store.DraftStore) *Synthesizer {
	return &Synthesizer{drafts: drafts}
}

// Params identifies the source image, the requesting owner, and the
// tagging backend that produced the underlying labels.
type Params struct {
	ImageID  uuid.UUID
	OwnerID  string
	Provider string
}

// Synthesize derives suggested fields from the match result and persists
// one immutable DraftSuggestion record.
func (s *Synthesizer) Synthesize(ctx context.Context, params Params, result *match.Result) (*models.DraftSuggestion, error) {
	suggestion := &models.DraftSuggestion{
		ID:              uuid.New(),
		ImageID:         params.ImageID,
		OwnerID:         params.OwnerID,
		SuggestedFields: BuildSuggestedFields(result),
		Confidence:      result.Score,
		Reasons:         result.Reasons,
		Provider:        params.Provider,
	}

	if err := s.drafts.CreateDraftSuggestion(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("failed to persist draft suggestion: %w", err)
	}
	log.Infof("Created draft suggestion %s (image=%s, item=%v, confidence=%.4f)",
		suggestion.ID, params.ImageID, derefOr(suggestion.SuggestedFields.ItemName, "<none>"), result.Score)
	return suggestion, nil
}

// BuildSuggestedFields maps a match result to listing field suggestions.
// Unmatched results still produce a usable draft: generic title and
// description, everything item-derived left null.
func BuildSuggestedFields(result *match.Result) models.SuggestedFields {
	fields := models.SuggestedFields{
		Description:      fallbackDescription + " " + callToAction,
		UnitOptions:      []string{},
		PriceUnitOptions: []string{},
	}
	title := fallbackTitle
	fields.Title = &title

	item := result.Item
	if item == nil {
		return fields
	}

	itemID := strconv.FormatInt(item.ID, 10)
	fields.ItemID = &itemID
	fields.ItemName = &item.Canonical

	matchedTitle := "Fresh " + match.TitleCase(item.Canonical)
	fields.Title = &matchedTitle
	fields.Description = fmt.Sprintf("Fresh %s, locally grown. %s", item.Canonical, callToAction)

	if item.DefaultUnit != nil && *item.DefaultUnit != "" {
		fields.Unit = item.DefaultUnit
	}
	if len(item.PriceHints) > 0 {
		hint := item.PriceHints[0]
		price := hint.Suggested
		priceUnit := hint.Unit
		fields.Price = &price
		fields.PriceUnit = &priceUnit
	}

	options := unitOptions(item)
	fields.UnitOptions = options
	fields.PriceUnitOptions = options
	return fields
}

// unitOptions returns the item's configured common units, or a singleton
// of its default unit, or an empty list.
func unitOptions(item *models.ProduceItem) []string {
	if len(item.CommonUnits) > 0 {
		return append([]string{}, item.CommonUnits...)
	}
	if item.DefaultUnit != nil && *item.DefaultUnit != "" {
		return []string{*item.DefaultUnit}
	}
	return []string{}
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
