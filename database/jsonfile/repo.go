// Package jsonfile implements folio.DocumentRepo as a single JSON file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sagarc03/folio"
)

type Repo struct {
	storage folio.FileStorage
	name    string
}

// NewRepo returns a repo persisting the document as name inside storage.
// Writes go through storage.Write, which replaces the file atomically.
func NewRepo(storage folio.FileStorage, name string) (*Repo, error) {
	if storage == nil {
		return nil, errors.New("new repo: storage is required")
	}
	if !folio.IsValidKey(name) {
		return nil, fmt.Errorf("new repo: invalid file name: %q", name)
	}
	return &Repo{storage: storage, name: name}, nil
}

// Load reads the document. A missing file yields an empty document.
func (r *Repo) Load(ctx context.Context) (folio.Document, error) {
	f, err := r.storage.Get(ctx, r.name)
	if err != nil {
		if errors.Is(err, folio.ErrNotFound) {
			return folio.NewDocument(), nil
		}
		return folio.Document{}, fmt.Errorf("load: %w: %w", folio.ErrPersistence, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close document file", "name", r.name, "err", closeErr)
		}
	}()

	var doc folio.Document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return folio.Document{}, fmt.Errorf("load %s: %w: %w", r.name, folio.ErrCorruptData, err)
	}

	doc.Normalize()
	return doc, nil
}

// Save replaces the persisted document with doc.
func (r *Repo) Save(ctx context.Context, doc folio.Document) error {
	doc.Normalize()

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("save: encode: %w", err)
	}

	if _, err := r.storage.Write(ctx, r.name, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("save %s: %w: %w", r.name, folio.ErrPersistence, err)
	}

	return nil
}
