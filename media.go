package folio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// LocalMedia keeps uploaded bytes on the local disk.
type LocalMedia struct {
	storage FileStorage
	now     func() time.Time
}

func NewLocalMedia(storage FileStorage) *LocalMedia {
	return &LocalMedia{storage: storage, now: time.Now}
}

func (m *LocalMedia) Backend() MediaBackend {
	return BackendLocal
}

// Store writes content under a generated key. The returned URL is always
// empty; local URLs are resolved per request by ResolveURL.
func (m *LocalMedia) Store(ctx context.Context, content io.Reader, originalName, _ string) (StoredMedia, error) {
	if err := ctx.Err(); err != nil {
		return StoredMedia{}, fmt.Errorf("store media: %w", err)
	}

	key, err := GenerateKey(originalName, m.now())
	if err != nil {
		return StoredMedia{}, fmt.Errorf("store media: generate key: %w", err)
	}

	res, err := m.storage.Write(ctx, key, content)
	if err != nil {
		return StoredMedia{}, fmt.Errorf("store media %s: %w", key, err)
	}

	return StoredMedia{
		Key:     key,
		Size:    res.BytesWritten,
		Etag:    res.Etag,
		Backend: BackendLocal,
	}, nil
}

// Delete removes key from disk. A missing file is not reported.
func (m *LocalMedia) Delete(ctx context.Context, key string) {
	err := m.storage.Delete(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("failed to delete local media", "key", key, "err", err)
	}
}

func (m *LocalMedia) ResolveURL(rec ImageRecord, host RequestHost) string {
	if rec.URL != "" {
		return rec.URL
	}
	return LocalURL(rec.Filename, host)
}

// Open serves only keys with an image extension, so other files sharing the
// storage directory stay private.
func (m *LocalMedia) Open(ctx context.Context, key string) (io.ReadSeekCloser, error) {
	if !IsValidKey(key) || !IsImageFile(key) {
		return nil, fmt.Errorf("open media: %w", ErrNotFound)
	}
	return m.storage.Get(ctx, key)
}

// List returns files in local storage that carry an image extension.
func (m *LocalMedia) List(ctx context.Context) ([]ObjectEntry, error) {
	entries, err := m.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	images := make([]ObjectEntry, 0, len(entries))
	for _, e := range entries {
		if IsImageFile(e.Path) {
			images = append(images, e)
		}
	}
	return images, nil
}

// RemoteMedia mirrors uploads to a Bucket. Bytes are written locally first,
// uploaded, and the local copy is dropped once the upload succeeds.
type RemoteMedia struct {
	local   *LocalMedia
	bucket  Bucket
	timeout time.Duration
}

// NewRemoteMedia creates a RemoteMedia. timeout bounds every bucket call
// (default: 30s).
func NewRemoteMedia(storage FileStorage, bucket Bucket, timeout time.Duration) *RemoteMedia {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteMedia{
		local:   NewLocalMedia(storage),
		bucket:  bucket,
		timeout: timeout,
	}
}

func (m *RemoteMedia) Backend() MediaBackend {
	return BackendRemote
}

// Store uploads content to the bucket. If the upload fails or times out the
// local copy is kept and the result is marked Degraded; the error is nil so
// that the caller still records the image.
func (m *RemoteMedia) Store(ctx context.Context, content io.Reader, originalName, contentType string) (StoredMedia, error) {
	stored, err := m.local.Store(ctx, content, originalName, contentType)
	if err != nil {
		return StoredMedia{}, err
	}

	if upErr := m.upload(ctx, stored, contentType); upErr != nil {
		slog.Warn("remote upload failed, keeping local copy", "key", stored.Key, "err", upErr)
		stored.Degraded = true
		return stored, nil
	}

	m.local.Delete(ctx, stored.Key)

	stored.URL = m.bucket.URL(stored.Key)
	stored.Backend = BackendRemote
	return stored, nil
}

func (m *RemoteMedia) upload(ctx context.Context, stored StoredMedia, contentType string) error {
	f, err := m.local.storage.Get(ctx, stored.Key)
	if err != nil {
		return fmt.Errorf("reopen local copy: %w", err)
	}
	defer func() { _ = f.Close() }()

	upCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.bucket.Put(upCtx, stored.Key, f, stored.Size, contentType); err != nil {
		return fmt.Errorf("put %s: %w", stored.Key, err)
	}
	return nil
}

// Delete removes key from the bucket and from local disk; either may hold it.
func (m *RemoteMedia) Delete(ctx context.Context, key string) {
	delCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.bucket.Delete(delCtx, key); err != nil {
		slog.Warn("failed to delete remote media", "key", key, "err", err)
	}
	m.local.Delete(ctx, key)
}

func (m *RemoteMedia) ResolveURL(rec ImageRecord, host RequestHost) string {
	return m.local.ResolveURL(rec, host)
}

func (m *RemoteMedia) Open(ctx context.Context, key string) (io.ReadSeekCloser, error) {
	return m.local.Open(ctx, key)
}

func (m *RemoteMedia) List(ctx context.Context) ([]ObjectEntry, error) {
	return m.local.List(ctx)
}
