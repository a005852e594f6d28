package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/folio"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

// Migrate creates the single-row document table if it is missing.
func Migrate(ctx context.Context, db *sql.DB, tables folio.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER NOT NULL PRIMARY KEY CHECK (id = 1),
			body TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`, quoteIdentifier(tables.Document))

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate: create document table: %w", err)
	}
	return nil
}

func DropTables(ctx context.Context, db *sql.DB, tables folio.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tables.Document))); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
