// Package database provides a unified way of connecting to document backends.
//
// Every backend stores the whole gallery document (users, sessions, images
// and galleries) as one unit, so a save is always all-or-nothing.
//
// # Supported Backends
//
//   - jsonfile: a single JSON file, written temp-file-then-rename
//   - SQLite: a single-row table holding the JSON body, using modernc.org/sqlite
//   - PostgreSQL: a single-row table with a JSONB body, using a pgx connection pool
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "folio.db",
//	    Tables: folio.Tables{Document: "folio_document"},
//	}
//
//	repo, cleanup, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
// For the SQL backends Connect also runs schema migrations and validates the
// resulting table before returning.
//
// # Subpackages
//
//   - database/jsonfile: flat file implementation on top of filesystem.Store
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
