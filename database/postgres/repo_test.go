package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() folio.Document {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	rec := folio.ImageRecord{
		Filename:     "lq3x-abc123.png",
		OriginalName: "cat.png",
		UploadedBy:   "alice",
		UploadedAt:   now,
		ContentType:  "image/png",
		Size:         42,
		Backend:      folio.BackendRemote,
		URL:          "https://cdn.example.com/lq3x-abc123.png",
	}

	doc := folio.NewDocument()
	doc.Users = []folio.User{{Username: "alice", PasswordHash: "$2a$10$hash", CreatedAt: now}}
	doc.Sessions["deadbeef"] = folio.Session{Username: "alice", CreatedAt: now}
	doc.Images = []folio.ImageRecord{rec}
	doc.Galleries["alice"] = []folio.ImageRecord{rec}
	return doc
}

func TestRepo_Load_EmptyTable(t *testing.T) {
	repo, _, _ := setupTestRepo(t)

	doc, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, folio.NewDocument(), doc)
}

func TestRepo_SaveThenLoad(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, repo.Save(ctx, doc))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestRepo_Save_ReplacesSingleRow(t *testing.T) {
	repo, pool, tables := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleDocument()))
	require.NoError(t, repo.Save(ctx, folio.NewDocument()))

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{tables.Document}.Sanitize())
	require.NoError(t, pool.QueryRow(ctx, query).Scan(&count))
	assert.Equal(t, 1, count)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Users)
}

func TestRepo_Save_ConcurrentWritersKeepOneRow(t *testing.T) {
	repo, pool, tables := setupTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			doc := folio.NewDocument()
			doc.Users = []folio.User{{Username: fmt.Sprintf("user%d", i), PasswordHash: "h"}}
			assert.NoError(t, repo.Save(ctx, doc))
		})
	}
	wg.Wait()

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{tables.Document}.Sanitize())
	require.NoError(t, pool.QueryRow(ctx, query).Scan(&count))
	assert.Equal(t, 1, count)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Users, 1)
}

func TestRepo_Load_CorruptBody(t *testing.T) {
	repo, pool, tables := setupTestRepo(t)
	ctx := context.Background()

	query := fmt.Sprintf(`INSERT INTO %s (id, body) VALUES (1, '{"users": "nope"}')`, pgx.Identifier{tables.Document}.Sanitize())
	_, err := pool.Exec(ctx, query)
	require.NoError(t, err)

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, folio.ErrCorruptData)
}

func TestRepo_Save_MissingTable(t *testing.T) {
	repo, pool, tables := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, postgres.DropTables(ctx, pool, tables))

	err := repo.Save(ctx, folio.NewDocument())
	assert.ErrorIs(t, err, folio.ErrPersistence)
}

func TestMigrate_IdempotentAndValid(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	tables := folio.Tables{Document: fmt.Sprintf("document_%s", getRandomString(t))}
	t.Cleanup(func() { _ = postgres.DropTables(context.Background(), pool, tables) })

	require.NoError(t, postgres.Migrate(ctx, pool, tables))
	require.NoError(t, postgres.Migrate(ctx, pool, tables))

	assert.NoError(t, postgres.ValidateSchema(ctx, pool, tables))
}

func TestValidateSchema_MissingTable(t *testing.T) {
	pool := getSharedTestDatabase(t)

	err := postgres.ValidateSchema(context.Background(), pool, folio.Tables{Document: "never_created"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateSchema_WrongColumnType(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	name := fmt.Sprintf("legacy_%s", getRandomString(t))
	tables := folio.Tables{Document: name}
	t.Cleanup(func() { _ = postgres.DropTables(context.Background(), pool, tables) })

	query := fmt.Sprintf(`CREATE TABLE %s (id SMALLINT PRIMARY KEY, body TEXT NOT NULL, updated_at TIMESTAMPTZ NOT NULL)`,
		pgx.Identifier{name}.Sanitize())
	_, err := pool.Exec(ctx, query)
	require.NoError(t, err)

	err = postgres.ValidateSchema(ctx, pool, tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "body: expected jsonb, got text")
}

func TestValidateSchema_IgnoresOtherSchemas(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	suffix := getRandomString(t)
	schema := pgx.Identifier{fmt.Sprintf("archive_%s", suffix)}.Sanitize()
	tables := folio.Tables{Document: fmt.Sprintf("document_%s", suffix)}

	_, err := pool.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = pool.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE") })

	query := fmt.Sprintf(`CREATE TABLE %s.%s (id SMALLINT PRIMARY KEY, body TEXT, legacy TEXT)`,
		schema, pgx.Identifier{tables.Document}.Sanitize())
	_, err = pool.Exec(ctx, query)
	require.NoError(t, err)

	err = postgres.ValidateSchema(ctx, pool, tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	t.Cleanup(func() { _ = postgres.DropTables(context.Background(), pool, tables) })
	require.NoError(t, postgres.Migrate(ctx, pool, tables))

	assert.NoError(t, postgres.ValidateSchema(ctx, pool, tables))
}

func TestRepo_PingThroughDataStore(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	store := folio.NewDataStore(repo)
	assert.NoError(t, store.Ping(context.Background()))
}
