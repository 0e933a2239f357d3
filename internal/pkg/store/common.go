package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/constants"
)

const (
	tableCatalog          = "catalog"
	tableResources        = "resources"
	tableOrganizations    = "organizations"
	tableBouquets         = "bouquets"
	tableDatasetsBouquets = "datasets_bouquets"
	tableMetrics          = "metrics"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder returns a squirrel SQL builder with Postgres placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// upsertQuery builds an insert keyed on conflictTarget that merges the new
// row over the existing one, leaving the surrogate id untouched.
func upsertQuery(table, conflictTarget string, columns []string, values []any) squirrel.InsertBuilder {
	updates := make([]string, 0, len(columns))
	for _, c := range columns {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	return builder().Insert(table).
		Columns(columns...).
		Values(values...).
		Suffix(fmt.Sprintf("on conflict (%s) do update set %s",
			conflictTarget, strings.Join(updates, ", ")))
}
