package folio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// Service exposes the gallery operations used by the HTTP layer. It
// composes the auth service, the catalog and the media store; the document
// lock is never held across a media store call.
type Service struct {
	auth           *AuthService
	catalog        *GalleryCatalog
	media          MediaStore
	cleanupTimeout time.Duration
	now            func() time.Time
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	CleanupTimeout time.Duration // Timeout for media cleanup after a failed metadata write (default: 30s)
}

func NewService(auth *AuthService, catalog *GalleryCatalog, media MediaStore, cfg ServiceConfig) (*Service, error) {
	if auth == nil || catalog == nil || media == nil {
		return nil, errors.New("new service: auth, catalog and media are required")
	}
	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}
	return &Service{
		auth:           auth,
		catalog:        catalog,
		media:          media,
		cleanupTimeout: cleanupTimeout,
		now:            time.Now,
	}, nil
}

func (s *Service) Register(ctx context.Context, username, password string) (User, error) {
	return s.auth.Register(ctx, username, password)
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	return s.auth.Login(ctx, username, password)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.auth.Logout(ctx, token)
}

func (s *Service) WhoAmI(ctx context.Context, token string) (string, error) {
	return s.auth.Validate(ctx, token)
}

// Upload stores an image for the owner of token and records it in the
// catalog.
//
// The media store runs before the document is touched. If the remote copy
// could not be made the upload still succeeds with UploadResult.Degraded set.
// If recording the metadata fails, the stored media is removed again using a
// background context bounded by the cleanup timeout.
//
// Error types returned:
//   - ErrUnauthorized: token missing or unknown
//   - ErrNoFile: no content or no file name
//   - ErrInvalidInput: file name without an image extension
//   - Wrapped storage or persistence errors
func (s *Service) Upload(ctx context.Context, token string, req UploadRequest) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	username, err := s.auth.Validate(ctx, token)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	if req.Content == nil || req.OriginalName == "" {
		return UploadResult{}, fmt.Errorf("upload: %w", ErrNoFile)
	}

	if !IsImageFile(req.OriginalName) {
		return UploadResult{}, fmt.Errorf("upload %s: %w: not an image", req.OriginalName, ErrInvalidInput)
	}

	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(req.OriginalName)
	}

	stored, err := s.media.Store(ctx, req.Content, req.OriginalName, contentType)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", req.OriginalName, err)
	}

	rec := ImageRecord{
		Filename:     stored.Key,
		OriginalName: req.OriginalName,
		UploadedBy:   username,
		UploadedAt:   s.now().UTC(),
		URL:          stored.URL,
		ContentType:  contentType,
		Size:         stored.Size,
		Backend:      stored.Backend,
		Degraded:     stored.Degraded,
	}

	if addErr := s.catalog.AddImage(ctx, rec); addErr != nil {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		defer cancel()
		s.media.Delete(cleanupCtx, stored.Key)
		return UploadResult{}, fmt.Errorf("upload %s: record metadata: %w", req.OriginalName, addErr)
	}

	rec.URL = s.media.ResolveURL(rec, req.Host)
	return UploadResult{Image: rec, Degraded: stored.Degraded}, nil
}

// ListImages returns every record with a resolved URL.
func (s *Service) ListImages(ctx context.Context, host RequestHost) ([]ImageRecord, error) {
	images, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolve(images, host), nil
}

// ListGallery returns username's records with resolved URLs.
func (s *Service) ListGallery(ctx context.Context, username string, host RequestHost) ([]ImageRecord, error) {
	images, err := s.catalog.ListForUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.resolve(images, host), nil
}

func (s *Service) resolve(images []ImageRecord, host RequestHost) []ImageRecord {
	for i := range images {
		images[i].URL = s.media.ResolveURL(images[i], host)
	}
	return images
}

// ListPhysicalFiles returns the images physically present in local storage.
// It is a diagnostic aid for reconciling the catalog with the disk.
func (s *Service) ListPhysicalFiles(ctx context.Context, host RequestHost) ([]PhysicalFile, error) {
	entries, err := s.media.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list physical files: %w", err)
	}

	files := make([]PhysicalFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, PhysicalFile{
			Filename:    e.Path,
			Size:        e.Size,
			ContentType: e.ContentType,
			URL:         LocalURL(e.Path, host),
		})
	}
	return files, nil
}

// DeleteImage removes filename from the catalog, then deletes its bytes on a
// best-effort basis.
func (s *Service) DeleteImage(ctx context.Context, token, filename string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	username, err := s.auth.Validate(ctx, token)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	if filename == "" {
		return fmt.Errorf("delete image: %w: filename cannot be empty", ErrInvalidInput)
	}

	rec, err := s.catalog.RemoveImage(ctx, filename, username)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	s.media.Delete(ctx, rec.Filename)
	return nil
}

// OpenMedia returns locally stored bytes for key along with its record, if
// the catalog knows it.
func (s *Service) OpenMedia(ctx context.Context, key string) (io.ReadSeekCloser, string, error) {
	f, err := s.media.Open(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("open media: %w", err)
	}

	contentType := detectContentType(key)
	if rec, getErr := s.catalog.Get(ctx, key); getErr == nil && rec.ContentType != "" {
		contentType = rec.ContentType
	}

	return f, contentType, nil
}

// HealthInfo reports document counts and whether the admin account exists.
// It fails when the document store is unreachable.
func (s *Service) HealthInfo(ctx context.Context) (HealthInfo, error) {
	if err := s.catalog.store.Ping(ctx); err != nil {
		return HealthInfo{}, fmt.Errorf("health info: %w", err)
	}

	var info HealthInfo

	err := s.catalog.store.View(ctx, func(doc *Document) error {
		info = HealthInfo{
			Users:        len(doc.Users),
			Sessions:     len(doc.Sessions),
			Images:       len(doc.Images),
			Galleries:    len(doc.Galleries),
			AdminCreated: s.auth.AdminUsername() != "" && doc.FindUser(s.auth.AdminUsername()) >= 0,
		}
		return nil
	})
	if err != nil {
		return HealthInfo{}, fmt.Errorf("health info: %w", err)
	}

	info.Backend = s.media.Backend()
	return info, nil
}

// Reconciliation compares the catalog with local storage.
type Reconciliation struct {
	// Orphans are files on disk that no record references.
	Orphans []string `json:"orphans"`
	// Missing are locally stored records whose file is gone.
	Missing []string `json:"missing"`
}

// Reconcile lists orphaned files and records whose local file is missing.
// Records held remotely are not checked.
func (s *Service) Reconcile(ctx context.Context) (Reconciliation, error) {
	entries, err := s.media.List(ctx)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("reconcile: %w", err)
	}

	images, err := s.catalog.ListAll(ctx)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("reconcile: %w", err)
	}

	onDisk := make(map[string]bool, len(entries))
	for _, e := range entries {
		onDisk[e.Path] = true
	}

	known := make(map[string]bool, len(images))
	result := Reconciliation{Orphans: []string{}, Missing: []string{}}
	for _, img := range images {
		known[img.Filename] = true
		if img.Backend != BackendRemote && !onDisk[img.Filename] {
			result.Missing = append(result.Missing, img.Filename)
		}
	}

	for _, e := range entries {
		if !known[e.Path] {
			result.Orphans = append(result.Orphans, e.Path)
		}
	}

	return result, nil
}

// detectContentType determines the MIME type from a file's extension.
func detectContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "application/octet-stream"
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}
