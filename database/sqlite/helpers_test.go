package sqlite_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // SQLite driver
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// openTestDB opens an in-memory database pinned to one connection.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "failed to open")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// setupTestRepo creates a migrated repo with a unique table name for test isolation
func setupTestRepo(t *testing.T) (*sqlite.Repo, *sql.DB, folio.Tables) {
	t.Helper()

	ctx := context.Background()
	db := openTestDB(t)

	tables := folio.Tables{Document: fmt.Sprintf("document_%s", getRandomString(t))}

	err := sqlite.Migrate(ctx, db, tables)
	require.NoError(t, err, "failed to migrate")

	repo, err := sqlite.NewRepo(db, tables)
	require.NoError(t, err, "failed to create repo")

	return repo, db, tables
}
