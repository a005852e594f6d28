// Package postgres implements folio.DocumentRepo using PostgreSQL
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/folio"
)

// documentID is the primary key of the only row in the document table.
const documentID = 1

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables folio.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: pgx.Identifier{tables.Document}.Sanitize()}, nil
}

// Ping verifies database connectivity. It backs the /api/health check.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) Load(ctx context.Context) (folio.Document, error) {
	query := fmt.Sprintf(`SELECT body FROM %s WHERE id = $1`, r.tableName)

	var body []byte
	err := r.pool.QueryRow(ctx, query, documentID).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return folio.NewDocument(), nil
		}
		return folio.Document{}, fmt.Errorf("load: %w: %w", folio.ErrPersistence, err)
	}

	var doc folio.Document
	if err := json.Unmarshal(body, &doc); err != nil {
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

	query := fmt.Sprintf(`
		INSERT INTO %s (id, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET body = EXCLUDED.body,
			updated_at = NOW()
	`, r.tableName)

	if _, err := r.pool.Exec(ctx, query, documentID, body); err != nil {
		return fmt.Errorf("save: %w: %w", folio.ErrPersistence, err)
	}

	return nil
}
