package folio_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/filesystem"
)

// memRepo keeps the document as JSON in memory so that every Load returns
// an independent copy, like a real backend.
type memRepo struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (r *memRepo) Load(_ context.Context) (folio.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadErr != nil {
		return folio.Document{}, r.loadErr
	}
	if r.data == nil {
		return folio.NewDocument(), nil
	}

	var doc folio.Document
	if err := json.Unmarshal(r.data, &doc); err != nil {
		return folio.Document{}, fmt.Errorf("%w: %w", folio.ErrCorruptData, err)
	}
	return doc, nil
}

func (r *memRepo) Save(_ context.Context, doc folio.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return fmt.Errorf("%w: %w", folio.ErrPersistence, r.saveErr)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", folio.ErrPersistence, err)
	}
	r.data = data
	r.saves++
	return nil
}

// pingRepo is a memRepo behind a connection that can be lost.
type pingRepo struct {
	memRepo
	pingErr error
}

func (r *pingRepo) Ping(_ context.Context) error {
	return r.pingErr
}

func (r *memRepo) failSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

func (r *memRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// snapshot returns the last saved document.
func (r *memRepo) snapshot(t *testing.T) folio.Document {
	t.Helper()
	doc, err := r.Load(context.Background())
	require.NoError(t, err)
	doc.Normalize()
	return doc
}

// seed stores doc as if it had been saved earlier.
func (r *memRepo) seed(t *testing.T, doc folio.Document) {
	t.Helper()
	require.NoError(t, r.Save(context.Background(), doc))
}

type SpyMediaStore struct {
	mock.Mock
}

func (s *SpyMediaStore) Store(ctx context.Context, content io.Reader, originalName, contentType string) (folio.StoredMedia, error) {
	args := s.Called(ctx, content, originalName, contentType)
	return args.Get(0).(folio.StoredMedia), args.Error(1)
}

func (s *SpyMediaStore) Delete(ctx context.Context, key string) {
	s.Called(ctx, key)
}

func (s *SpyMediaStore) ResolveURL(rec folio.ImageRecord, host folio.RequestHost) string {
	args := s.Called(rec, host)
	return args.String(0)
}

func (s *SpyMediaStore) Open(ctx context.Context, key string) (io.ReadSeekCloser, error) {
	args := s.Called(ctx, key)
	rsc, _ := args.Get(0).(io.ReadSeekCloser)
	return rsc, args.Error(1)
}

func (s *SpyMediaStore) List(ctx context.Context) ([]folio.ObjectEntry, error) {
	args := s.Called(ctx)
	return args.Get(0).([]folio.ObjectEntry), args.Error(1)
}

func (s *SpyMediaStore) Backend() folio.MediaBackend {
	args := s.Called()
	return args.Get(0).(folio.MediaBackend)
}

type SpyBucket struct {
	mock.Mock
}

func (b *SpyBucket) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	args := b.Called(ctx, key, content, size, contentType)
	return args.Error(0)
}

func (b *SpyBucket) Delete(ctx context.Context, key string) error {
	args := b.Called(ctx, key)
	return args.Error(0)
}

func (b *SpyBucket) URL(key string) string {
	args := b.Called(key)
	return args.String(0)
}

func newAuth(t *testing.T, cfg folio.AuthConfig) (*folio.AuthService, *folio.DataStore, *memRepo) {
	t.Helper()
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.MinCost
	}
	repo := &memRepo{}
	store := folio.NewDataStore(repo)
	return folio.NewAuthService(store, cfg), store, repo
}

func newStorage(t *testing.T) *filesystem.Store {
	t.Helper()
	store, closeRoot, err := filesystem.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(closeRoot)
	return store
}

type testEnv struct {
	service *folio.Service
	auth    *folio.AuthService
	catalog *folio.GalleryCatalog
	repo    *memRepo
	storage *filesystem.Store
}

// newTestEnv wires a Service over an in-memory document and local media in
// a temp directory. The admin account is "root".
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth, store, repo := newAuth(t, folio.AuthConfig{AdminUsername: "root", AdminPassword: "secret"})
	catalog := folio.NewGalleryCatalog(store, auth.IsAdmin)
	storage := newStorage(t)

	service, err := folio.NewService(auth, catalog, folio.NewLocalMedia(storage), folio.ServiceConfig{})
	require.NoError(t, err)

	return &testEnv{service: service, auth: auth, catalog: catalog, repo: repo, storage: storage}
}

// login registers username and returns a session token.
func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	ctx := context.Background()
	_, err := e.service.Register(ctx, username, username+"-pw")
	require.NoError(t, err)
	token, err := e.service.Login(ctx, username, username+"-pw")
	require.NoError(t, err)
	return token
}
