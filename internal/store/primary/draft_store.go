package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"farmstand/internal/models"
	"farmstand/internal/store"
)

// --- Draft Suggestions ---

// CreateDraftSuggestion inserts a new draft record. Drafts are immutable;
// there is deliberately no update path.
func (s *StoreImpl) CreateDraftSuggestion(ctx context.Context, draft *models.DraftSuggestion) error {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now()
	}

	fieldsJSON, err := json.Marshal(draft.SuggestedFields)
	if err != nil {
		return fmt.Errorf("failed to encode suggested fields: %w", err)
	}
	reasonsJSON, err := json.Marshal(draft.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}

	query := `
		INSERT INTO draft_suggestions (id, image_id, owner_id, suggested_fields, confidence, reasons, provider, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.db.Exec(ctx, query,
		draft.ID, draft.ImageID, draft.OwnerID, fieldsJSON,
		draft.Confidence, reasonsJSON, draft.Provider, draft.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert draft suggestion: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetDraftSuggestion(ctx context.Context, id uuid.UUID) (*models.DraftSuggestion, error) {
	query := `
		SELECT id, image_id, owner_id, suggested_fields, confidence, reasons, provider, created_at
		FROM draft_suggestions WHERE id = $1`

	draft := &models.DraftSuggestion{}
	var fieldsJSON, reasonsJSON []byte
	err := s.db.QueryRow(ctx, query, id).Scan(
		&draft.ID, &draft.ImageID, &draft.OwnerID, &fieldsJSON,
		&draft.Confidence, &reasonsJSON, &draft.Provider, &draft.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get draft suggestion %s: %w", id, err)
	}

	if err := json.Unmarshal(fieldsJSON, &draft.SuggestedFields); err != nil {
		return nil, fmt.Errorf("failed to decode suggested fields for draft %s: %w", id, err)
	}
	if err := json.Unmarshal(reasonsJSON, &draft.Reasons); err != nil {
		return nil, fmt.Errorf("failed to decode reasons for draft %s: %w", id, err)
	}
	return draft, nil
}

// Ensure StoreImpl satisfies the DraftStore interface
var _ store.DraftStore = (*StoreImpl)(nil)
