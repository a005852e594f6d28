package postgres

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/folio"
)

// documentColumns maps each column Repo reads or writes to its
// information_schema data type. All of them are NOT NULL.
var documentColumns = map[string]string{
	"id":         "smallint",
	"body":       "jsonb",
	"updated_at": "timestamp with time zone",
}

// ValidateSchema checks that the document table exists in the public schema
// and carries the columns Repo relies on.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables folio.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, tables.Document)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Document, err)
	}

	type column struct {
		dataType string
		notNull  bool
	}
	actual := make(map[string]column)
	var name, dataType, nullable string
	_, err = pgx.ForEachRow(rows, []any{&name, &dataType, &nullable}, func() error {
		actual[name] = column{dataType: strings.ToLower(dataType), notNull: nullable == "NO"}
		return nil
	})
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Document, err)
	}

	if len(actual) == 0 {
		return fmt.Errorf("validate schema: table %s does not exist", tables.Document)
	}

	var missing, problems []string
	for _, key := range slices.Sorted(maps.Keys(documentColumns)) {
		col, ok := actual[key]
		switch {
		case !ok:
			missing = append(missing, key)
		case col.dataType != documentColumns[key]:
			problems = append(problems, fmt.Sprintf("%s: expected %s, got %s", key, documentColumns[key], col.dataType))
		case !col.notNull:
			problems = append(problems, key+": must be NOT NULL")
		}
	}
	if len(missing) > 0 {
		problems = append([]string{"missing columns: " + strings.Join(missing, ", ")}, problems...)
	}
	if len(problems) > 0 {
		return fmt.Errorf("validate schema: table %s: %s", tables.Document, strings.Join(problems, "; "))
	}

	return nil
}
