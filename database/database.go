package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/database/jsonfile"
	"github.com/sagarc03/folio/database/postgres"
	"github.com/sagarc03/folio/database/sqlite"
	"github.com/sagarc03/folio/filesystem"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config holds the configuration for connecting to a document backend.
type Config struct {
	// Type specifies the backend: "jsonfile", "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=jsonfile sqlite postgres"`
	// DSN is the file path for jsonfile, or the data source name for the SQL backends
	DSN string `mapstructure:"dsn" validate:"required"`
	// Tables holds the table names used by the SQL backends
	Tables folio.Tables `mapstructure:"tables"`
}

// Connect opens the configured backend, runs migrations and validates the
// schema where applicable, and returns a DocumentRepo. The returned cleanup
// function releases the underlying connection or file handle.
func Connect(ctx context.Context, cfg Config) (folio.DocumentRepo, func(), error) {
	switch cfg.Type {
	case "jsonfile":
		return connectJSONFile(cfg.DSN)
	case "sqlite":
		return connectSQLite(ctx, cfg.DSN, cfg.Tables)
	case "postgres":
		return connectPostgres(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func connectJSONFile(path string) (folio.DocumentRepo, func(), error) {
	if path == "" {
		return nil, nil, errors.New("open jsonfile: empty path")
	}

	store, closeRoot, err := filesystem.Open(filepath.Dir(path))
	if err != nil {
		return nil, nil, fmt.Errorf("open jsonfile: %w", err)
	}

	repo, err := jsonfile.NewRepo(store, filepath.Base(path))
	if err != nil {
		closeRoot()
		return nil, nil, fmt.Errorf("create jsonfile repo: %w", err)
	}

	return repo, closeRoot, nil
}

func connectSQLite(ctx context.Context, dsn string, tables folio.Tables) (folio.DocumentRepo, func(), error) {
	if err := tables.Validate(); err != nil {
		return nil, nil, fmt.Errorf("connect sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err = sqlite.Migrate(ctx, db, tables); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	if err = sqlite.ValidateSchema(ctx, db, tables); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("validate sqlite schema: %w", err)
	}

	repo, err := sqlite.NewRepo(db, tables)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create sqlite repo: %w", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return repo, cleanup, nil
}

func connectPostgres(ctx context.Context, dsn string, tables folio.Tables) (folio.DocumentRepo, func(), error) {
	if err := tables.Validate(); err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err = postgres.Migrate(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	if err = postgres.ValidateSchema(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("validate postgres schema: %w", err)
	}

	repo, err := postgres.NewRepo(pool, tables)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create postgres repo: %w", err)
	}

	return repo, pool.Close, nil
}
