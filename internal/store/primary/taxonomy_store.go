package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"farmstand/internal/match"
	"farmstand/internal/models"
	"farmstand/internal/store"
)

// --- Taxonomy Management ---

const produceItemColumns = `id, name, canonical, synonyms, default_unit, common_units, price_hints, active, priority, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduceItem(row rowScanner) (*models.ProduceItem, error) {
	item := &models.ProduceItem{}
	var priceHints []byte
	err := row.Scan(
		&item.ID, &item.Name, &item.Canonical, &item.Synonyms,
		&item.DefaultUnit, &item.CommonUnits, &priceHints,
		&item.Active, &item.Priority, &item.CreatedBy,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(priceHints) > 0 {
		if err := json.Unmarshal(priceHints, &item.PriceHints); err != nil {
			return nil, fmt.Errorf("failed to decode price hints for item %d: %w", item.ID, err)
		}
	}
	return item, nil
}

func (s *StoreImpl) UpsertProduceItem(ctx context.Context, params store.UpsertProduceItemParams) (*models.ProduceItem, bool, error) {
	canonical := match.TrimCanonical(params.Canonical)
	if canonical == "" {
		return nil, false, fmt.Errorf("canonical name cannot be empty")
	}
	synonyms := match.DedupeSynonyms(params.Synonyms)

	query := `SELECT ` + produceItemColumns + ` FROM produce_items WHERE LOWER(canonical) = LOWER($1)`
	existing, err := scanProduceItem(s.db.QueryRow(ctx, query, canonical))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up produce item by canonical %q: %w", canonical, err)
	}

	now := time.Now()
	if existing != nil {
		merged := match.DedupeSynonyms(append(existing.Synonyms, synonyms...))
		priority := existing.Priority
		if params.Priority != nil {
			priority = *params.Priority
		}
		active := existing.Active
		if params.Active != nil {
			active = *params.Active
		}
		defaultUnit := existing.DefaultUnit
		if params.DefaultUnit != nil {
			defaultUnit = params.DefaultUnit
		}
		commonUnits := existing.CommonUnits
		if params.CommonUnits != nil {
			commonUnits = params.CommonUnits
		}
		priceHints := existing.PriceHints
		if params.PriceHints != nil {
			priceHints = params.PriceHints
		}
		hintsJSON, err := json.Marshal(priceHints)
		if err != nil {
			return nil, false, fmt.Errorf("failed to encode price hints: %w", err)
		}

		updateQuery := `
			UPDATE produce_items
			SET canonical = $1, name = $2, synonyms = $3, default_unit = $4,
				common_units = $5, price_hints = $6, active = $7, priority = $8,
				updated_at = $9
			WHERE id = $10
			RETURNING ` + produceItemColumns
		item, err := scanProduceItem(s.db.QueryRow(ctx, updateQuery,
			canonical, match.MakeSlug(canonical), merged, defaultUnit,
			commonUnits, hintsJSON, active, priority, now, existing.ID,
		))
		if err != nil {
			return nil, false, fmt.Errorf("failed to update produce item %d: %w", existing.ID, err)
		}
		return item, false, nil
	}

	priority := 0
	if params.Priority != nil {
		priority = *params.Priority
	}
	active := true
	if params.Active != nil {
		active = *params.Active
	}
	hintsJSON, err := json.Marshal(params.PriceHints)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode price hints: %w", err)
	}
	if params.CommonUnits == nil {
		params.CommonUnits = []string{}
	}

	insertQuery := `
		INSERT INTO produce_items (name, canonical, synonyms, default_unit, common_units, price_hints, active, priority, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + produceItemColumns
	item, err := scanProduceItem(s.db.QueryRow(ctx, insertQuery,
		match.MakeSlug(canonical), canonical, synonyms, params.DefaultUnit,
		params.CommonUnits, hintsJSON, active, priority, params.CreatedBy, now, now,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, false, fmt.Errorf("produce item with canonical name %q already exists: %w", canonical, store.ErrDuplicate)
		}
		return nil, false, fmt.Errorf("failed to insert produce item: %w", err)
	}
	return item, true, nil
}

func (s *StoreImpl) AppendSynonyms(ctx context.Context, id int64, synonyms []string) (*models.ProduceItem, error) {
	existing, err := s.GetProduceItem(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := match.DedupeSynonyms(append(existing.Synonyms, synonyms...))
	query := `
		UPDATE produce_items SET synonyms = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + produceItemColumns
	item, err := scanProduceItem(s.db.QueryRow(ctx, query, merged, time.Now(), id))
	if err != nil {
		return nil, fmt.Errorf("failed to append synonyms to produce item %d: %w", id, err)
	}
	return item, nil
}

func (s *StoreImpl) GetProduceItem(ctx context.Context, id int64) (*models.ProduceItem, error) {
	query := `SELECT ` + produceItemColumns + ` FROM produce_items WHERE id = $1`
	item, err := scanProduceItem(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get produce item by id %d: %w", id, err)
	}
	return item, nil
}

func (s *StoreImpl) ListProduceItems(ctx context.Context, activeOnly bool) ([]*models.ProduceItem, error) {
	query := `SELECT ` + produceItemColumns + ` FROM produce_items`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY priority DESC, canonical ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list produce items: %w", err)
	}
	defer rows.Close()

	var items []*models.ProduceItem
	for rows.Next() {
		item, err := scanProduceItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan produce item row: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating produce item rows: %w", err)
	}
	return items, nil
}

// Ensure StoreImpl satisfies the TaxonomyStore interface
var _ store.TaxonomyStore = (*StoreImpl)(nil)
