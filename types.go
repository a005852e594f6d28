package folio

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"
)

type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type ImageRecord struct {
	Filename     string       `json:"filename"`
	OriginalName string       `json:"original_name"`
	UploadedBy   string       `json:"uploaded_by"`
	UploadedAt   time.Time    `json:"uploaded_at"`
	URL          string       `json:"url,omitempty"`
	ContentType  string       `json:"content_type,omitempty"`
	Size         int64        `json:"size"`
	Backend      MediaBackend `json:"backend,omitempty"`
	Degraded     bool         `json:"degraded,omitempty"`
}

// Document is the whole persisted state. Images and Galleries are two
// indices over the same set of records.
type Document struct {
	Users     []User                   `json:"users"`
	Sessions  map[string]Session       `json:"sessions"`
	Images    []ImageRecord            `json:"images"`
	Galleries map[string][]ImageRecord `json:"galleries"`
}

// NewDocument returns an empty document with all collections allocated.
func NewDocument() Document {
	return Document{
		Users:     []User{},
		Sessions:  map[string]Session{},
		Images:    []ImageRecord{},
		Galleries: map[string][]ImageRecord{},
	}
}

// Normalize allocates any collection left nil by an older or hand-edited document.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Sessions == nil {
		d.Sessions = map[string]Session{}
	}
	if d.Images == nil {
		d.Images = []ImageRecord{}
	}
	if d.Galleries == nil {
		d.Galleries = map[string][]ImageRecord{}
	}
}

// FindUser returns the index of username in Users or -1.
func (d *Document) FindUser(username string) int {
	for i, u := range d.Users {
		if u.Username == username {
			return i
		}
	}
	return -1
}

// FindImage returns the index of filename in Images or -1.
func (d *Document) FindImage(filename string) int {
	for i, img := range d.Images {
		if img.Filename == filename {
			return i
		}
	}
	return -1
}

// StoredMedia describes where uploaded bytes ended up.
type StoredMedia struct {
	Key      string
	URL      string
	Size     int64
	Etag     string
	Backend  MediaBackend
	Degraded bool
}

type SaveResult struct {
	BytesWritten int64
	Etag         string
}

type ObjectEntry struct {
	Path        string
	Size        int64
	ETag        string
	ContentType string
}

// PhysicalFile is an image found in local storage.
type PhysicalFile struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

type UploadRequest struct {
	Content      io.Reader
	OriginalName string
	ContentType  string
	Host         RequestHost
}

type UploadResult struct {
	Image    ImageRecord `json:"file"`
	Degraded bool        `json:"degraded"`
}

// Err returns ErrStorageDegraded for a partially successful upload.
func (r UploadResult) Err() error {
	if r.Degraded {
		return ErrStorageDegraded
	}
	return nil
}

// RequestHost is the serving host of the current request, used to build
// absolute URLs for locally stored files.
type RequestHost struct {
	Scheme string
	Host   string
}

type HealthInfo struct {
	Users        int          `json:"users"`
	Sessions     int          `json:"sessions"`
	Images       int          `json:"images"`
	Galleries    int          `json:"galleries"`
	Backend      MediaBackend `json:"backend"`
	AdminCreated bool         `json:"admin_created"`
}

type MediaBackend string

const (
	BackendLocal  MediaBackend = "local"
	BackendRemote MediaBackend = "remote"
)

func (b MediaBackend) IsValid() bool {
	switch b {
	case BackendLocal, BackendRemote:
		return true
	default:
		return false
	}
}

func ParseMediaBackend(s string) (MediaBackend, error) {
	backend := MediaBackend(s)
	if !backend.IsValid() {
		return "", fmt.Errorf("invalid storage backend: %s (valid backends: local, remote)", s)
	}
	return backend, nil
}

// Tables holds configurable table names for document storage.
type Tables struct {
	Document string `mapstructure:"document"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Document == "" {
		return errors.New("validate tables: document table name cannot be empty")
	}

	if !IsValidTableName(t.Document) {
		return fmt.Errorf("validate tables: invalid document table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Document)
	}

	return nil
}
