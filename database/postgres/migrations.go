package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/folio"
)

func Migrate(ctx context.Context, pool *pgxpool.Pool, tables folio.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := createDocumentTable(ctx, pool, tables.Document); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func DropTables(ctx context.Context, pool *pgxpool.Pool, tables folio.Tables) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{tables.Document}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

// createDocumentTable creates the single-row table holding the document body.
func createDocumentTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SMALLINT PRIMARY KEY CHECK (id = 1),
			body JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, pgx.Identifier{tableName}.Sanitize())

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create document table: %w", err)
	}
	return nil
}
