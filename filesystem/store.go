// Package filesystem provides the local disk backend for folio. Uploaded
// images and the JSON document are both written through it, atomically,
// using temp files and rename inside an os.Root sandbox.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/folio"
)

// tmpPrefix marks in-flight writes. Files starting with it are never listed.
const tmpPrefix = ".t"

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// Open creates dir if needed and returns a Store rooted at it, plus a
// function closing the root.
func Open(dir string) (*Store, func(), error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}

	return NewFileStorage(root), func() { _ = root.Close() }, nil
}

// Get opens a file for reading. Returns folio.ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, folio.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically writes content to the given path using a temp file and rename.
// It creates intermediate directories as needed and returns a SaveResult containing
// the number of bytes written and SHA256-based etag. The operation respects context cancellation.
func (s *Store) Write(ctx context.Context, path string, content io.Reader) (folio.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return folio.SaveResult{}, ctxErr
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return folio.SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	fileSizeBytes, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return folio.SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err = t.Sync(); err != nil {
		return folio.SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	// Close before rename so the data is complete on platforms that lock open files.
	if err = t.Close(); err != nil {
		return folio.SaveResult{}, fmt.Errorf("could not close written file: %w", err)
	}

	destDir := filepath.Dir(path)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return folio.SaveResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if renameErr := s.root.Rename(tmpFile, path); renameErr != nil {
		return folio.SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true
	return folio.SaveResult{BytesWritten: fileSizeBytes, Etag: hex.EncodeToString(h.Sum(nil))}, nil
}

// Delete removes a file. Returns folio.ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.root.Remove(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return folio.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List recursively walks the root directory and returns all files with their
// size, SHA256-based etag and detected content type. Temp files are skipped.
func (s *Store) List(ctx context.Context) ([]folio.ObjectEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := []folio.ObjectEntry{}

	err := s.walkDir(ctx, ".", &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return entries, nil
}

func (s *Store) walkDir(ctx context.Context, path string, entries *[]folio.ObjectEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), path)
	if err != nil {
		return err
	}

	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}

		entryPath := filepath.Join(path, entry.Name())

		if entry.IsDir() {
			if err := s.walkDir(ctx, entryPath, entries); err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		etag, err := s.hashFile(entryPath)
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		*entries = append(*entries, folio.ObjectEntry{
			Path:        filepath.ToSlash(entryPath),
			Size:        info.Size(),
			ETag:        etag,
			ContentType: detectContentType(entryPath),
		})
	}

	return nil
}

func (s *Store) hashFile(path string) (string, error) {
	f, err := s.root.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", path, "err", closeErr)
		}
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func detectContentType(path string) string {
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}
