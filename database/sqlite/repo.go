// Package sqlite implements folio.DocumentRepo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/folio"
)

// documentID is the primary key of the only row in the document table.
const documentID = 1

type Repo struct {
	db        *sql.DB
	tableName string
}

func NewRepo(db *sql.DB, tables folio.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: quoteIdentifier(tables.Document)}, nil
}

// Ping verifies database connectivity. It backs the /api/health check.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repo) Load(ctx context.Context) (folio.Document, error) {
	query := fmt.Sprintf(`SELECT body FROM %s WHERE id = ?`, r.tableName) //nolint:gosec // G201: table name is validated

	var body string
	err := r.db.QueryRowContext(ctx, query, documentID).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return folio.NewDocument(), nil
		}
		return folio.Document{}, fmt.Errorf("load: %w: %w", folio.ErrPersistence, err)
	}

	var doc folio.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return folio.Document{}, fmt.Errorf("load: %w: %w", folio.ErrCorruptData, err)
	}

	doc.Normalize()
	return doc, nil
}

func (r *Repo) Save(ctx context.Context, doc folio.Document) error {
	doc.Normalize()

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save: encode: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET body = excluded.body, updated_at = excluded.updated_at`, r.tableName)

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := r.db.ExecContext(ctx, query, documentID, string(body), now); err != nil {
		return fmt.Errorf("save: %w: %w", folio.ErrPersistence, err)
	}

	return nil
}
