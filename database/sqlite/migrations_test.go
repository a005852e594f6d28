package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	tables := folio.Tables{Document: "folio_document"}

	require.NoError(t, sqlite.Migrate(ctx, db, tables))
	require.NoError(t, sqlite.Migrate(ctx, db, tables))

	assert.NoError(t, sqlite.ValidateSchema(ctx, db, tables))
}

func TestMigrate_InvalidTableName(t *testing.T) {
	db := openTestDB(t)

	err := sqlite.Migrate(context.Background(), db, folio.Tables{Document: "drop table;"})
	assert.Error(t, err)
}

func TestValidateSchema_MissingTable(t *testing.T) {
	db := openTestDB(t)

	err := sqlite.ValidateSchema(context.Background(), db, folio.Tables{Document: "missing_table"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateSchema_WrongColumns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.ExecContext(ctx, `CREATE TABLE "legacy" (id INTEGER NOT NULL PRIMARY KEY, payload BLOB)`)
	require.NoError(t, err)

	err = sqlite.ValidateSchema(ctx, db, folio.Tables{Document: "legacy"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
}

func TestValidateSchema_ColumnMismatches(t *testing.T) {
	tests := []struct {
		name   string
		create string
		want   string
	}{
		{
			name:   "wrong type",
			create: `CREATE TABLE "doc" (id INTEGER NOT NULL PRIMARY KEY, body BLOB NOT NULL, updated_at TEXT NOT NULL)`,
			want:   "body: expected text, got blob",
		},
		{
			name:   "nullable column",
			create: `CREATE TABLE "doc" (id INTEGER NOT NULL PRIMARY KEY, body TEXT, updated_at TEXT NOT NULL)`,
			want:   "body: must be NOT NULL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := openTestDB(t)

			_, err := db.ExecContext(ctx, tt.create)
			require.NoError(t, err)

			err = sqlite.ValidateSchema(ctx, db, folio.Tables{Document: "doc"})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDropTables(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	tables := folio.Tables{Document: "dropme"}

	require.NoError(t, sqlite.Migrate(ctx, db, tables))
	require.NoError(t, sqlite.DropTables(ctx, db, tables))

	var name string
	err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT name FROM sqlite_master WHERE type='table' AND name='%s'`, tables.Document)).Scan(&name)
	assert.Error(t, err)
}
