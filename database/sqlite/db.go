package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/sagarc03/folio"
)

// documentColumns maps each column Repo reads or writes to its declared type.
// All of them are NOT NULL.
var documentColumns = map[string]string{
	"id":         "integer",
	"body":       "text",
	"updated_at": "text",
}

// ValidateSchema checks that the document table exists and carries the
// columns Repo relies on.
func ValidateSchema(ctx context.Context, db *sql.DB, tables folio.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(tables.Document)))
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Document, err)
	}
	defer func() { _ = rows.Close() }()

	type column struct {
		dataType string
		notNull  bool
	}
	actual := make(map[string]column)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("validate schema %s: %w", tables.Document, err)
		}
		actual[name] = column{dataType: strings.ToLower(dataType), notNull: notNull != 0}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Document, err)
	}

	// PRAGMA table_info yields no rows for an unknown table.
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
