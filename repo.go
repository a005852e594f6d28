package folio

import (
	"context"
	"io"
)

// DocumentRepo defines the interface for persisting the gallery document.
// Implementations may use a flat file, SQLite, PostgreSQL or any other engine
// as long as the contract below holds.
//
// All methods accept a context for cancellation and timeout control.
type DocumentRepo interface {
	// Load reads the persisted document.
	//
	// Returns:
	//   - Document: the stored document, or an empty one (NewDocument) when
	//     nothing has been persisted yet
	//   - error: ErrCorruptData if stored content cannot be parsed, or other
	//     storage errors
	Load(ctx context.Context) (Document, error)

	// Save replaces the persisted document.
	//
	// Implementations must make the write atomic: a later Load observes either
	// the previous or the new document, never a partially written one.
	//
	// Returns:
	//   - error: ErrPersistence wrapping the underlying write failure
	Save(ctx context.Context, doc Document) error
}

// Pinger is implemented by document repos that hold a database connection.
// DataStore.Ping uses it for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// FileStorage defines the interface for physical file storage operations on
// the local disk.
//
// All methods accept a context for cancellation and timeout control.
type FileStorage interface {
	// Get opens a stored file for reading.
	//
	// Returns:
	//   - io.ReadSeekCloser: Reader for file content with seek capability
	//   - error: ErrNotFound if file doesn't exist, or other storage errors
	//
	// The caller is responsible for closing the returned ReadSeekCloser.
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)

	// Write stores content at path, overwriting any existing file.
	//
	// Implementations should:
	//   - Write atomically (temp file then rename)
	//   - Compute an ETag during write
	//   - Clean up partial writes when the context is cancelled
	Write(ctx context.Context, path string, content io.Reader) (SaveResult, error)

	// Delete removes a file from storage.
	//
	// Returns:
	//   - error: ErrNotFound if file doesn't exist, or other storage errors
	Delete(ctx context.Context, path string) error

	// List returns all files currently in storage.
	//
	// Implementations should return an empty slice (not nil) when storage is
	// empty and skip their own temporary files.
	List(ctx context.Context) ([]ObjectEntry, error)
}

// Bucket is a remote object store reachable over the network.
type Bucket interface {
	// Put uploads size bytes from content under key.
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error

	// URL returns a directly fetchable URL for key.
	URL(key string) string
}

// MediaStore abstracts where uploaded bytes live. A single implementation is
// chosen at startup; see NewLocalMedia and NewRemoteMedia.
type MediaStore interface {
	// Store saves content under a freshly generated key.
	//
	// A remote variant that fails to upload keeps the local copy and returns
	// StoredMedia with Degraded set and a nil error.
	Store(ctx context.Context, content io.Reader, originalName, contentType string) (StoredMedia, error)

	// Delete removes key from whichever backend holds it. Failures are
	// logged, never returned.
	Delete(ctx context.Context, key string)

	// ResolveURL returns a fetchable URL for rec, building one from host for
	// records that have no stored URL.
	ResolveURL(rec ImageRecord, host RequestHost) string

	// Open returns the locally held bytes for key. Keys without an image
	// extension return ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadSeekCloser, error)

	// List returns the images physically present in local storage.
	List(ctx context.Context) ([]ObjectEntry, error)

	// Backend reports which variant is active.
	Backend() MediaBackend
}
