package primary

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreImpl implements the store interfaces using PostgreSQL.
type StoreImpl struct {
	db *pgxpool.Pool
}

// NewPrimaryStore creates a new PostgreSQL store implementation.
func NewPrimaryStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &StoreImpl{db: dbpool}, nil
}

// Ping checks the database connection.
func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection pool.
func (s *StoreImpl) Close() {
	s.db.Close()
}

// EnsureSchema creates the tables the service needs if they do not exist.
func (s *StoreImpl) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS produce_items (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			canonical TEXT NOT NULL,
			synonyms TEXT[] NOT NULL DEFAULT '{}',
			default_unit TEXT,
			common_units TEXT[] NOT NULL DEFAULT '{}',
			price_hints JSONB NOT NULL DEFAULT '[]',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			priority INTEGER NOT NULL DEFAULT 0,
			created_by TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS produce_items_canonical_lower_idx
			ON produce_items (LOWER(canonical))`,
		`CREATE INDEX IF NOT EXISTS produce_items_active_idx ON produce_items (active)`,
		`CREATE TABLE IF NOT EXISTS draft_suggestions (
			id UUID PRIMARY KEY,
			image_id UUID NOT NULL,
			owner_id TEXT NOT NULL,
			suggested_fields JSONB NOT NULL,
			confidence DOUBLE PRECISION NOT NULL CHECK (confidence >= 0),
			reasons JSONB NOT NULL DEFAULT '[]',
			provider TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS draft_suggestions_owner_idx ON draft_suggestions (owner_id)`,
		`CREATE TABLE IF NOT EXISTS image_assets (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			content_type TEXT NOT NULL,
			data BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
