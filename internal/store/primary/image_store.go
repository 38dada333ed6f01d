package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"farmstand/internal/models"
	"farmstand/internal/store"
)

// --- Image Assets ---

func (s *StoreImpl) CreateImageAsset(ctx context.Context, asset *models.ImageAsset) error {
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO image_assets (id, owner_id, filename, content_type, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.Exec(ctx, query,
		asset.ID, asset.OwnerID, asset.Filename, asset.ContentType, asset.Data, asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image asset: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetImageAsset(ctx context.Context, id uuid.UUID) (*models.ImageAsset, error) {
	query := `SELECT id, owner_id, filename, content_type, data, created_at FROM image_assets WHERE id = $1`
	asset := &models.ImageAsset{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&asset.ID, &asset.OwnerID, &asset.Filename, &asset.ContentType, &asset.Data, &asset.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get image asset %s: %w", id, err)
	}
	return asset, nil
}

// Ensure StoreImpl satisfies the ImageStore interface
var _ store.ImageStore = (*StoreImpl)(nil)
