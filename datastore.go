package folio

import (
	"context"
	"fmt"
	"sync"
)

// DataStore serializes every read-modify-write of the document behind one
// mutex so that concurrent requests cannot lose each other's updates.
//
// Callers must not perform network I/O inside View or Update callbacks.
type DataStore struct {
	mu   sync.Mutex
	repo DocumentRepo
}

func NewDataStore(repo DocumentRepo) *DataStore {
	return &DataStore{repo: repo}
}

// Ping checks the connection of the underlying repo. Repos that do not
// implement Pinger are always reachable.
func (s *DataStore) Ping(ctx context.Context) error {
	p, ok := s.repo.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("ping document store: %w: %w", ErrPersistence, err)
	}
	return nil
}

// View loads the document and passes it to fn. Changes made by fn are discarded.
func (s *DataStore) View(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("view document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("view document: %w", err)
	}
	doc.Normalize()

	return fn(&doc)
}

// Update loads the document, applies fn and saves the result. If fn returns
// an error nothing is saved and the error is returned unwrapped.
func (s *DataStore) Update(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	doc.Normalize()

	if err := fn(&doc); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	return nil
}
