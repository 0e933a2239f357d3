package store

import (
	"os"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
)

var tableBlockRe = regexp.MustCompile(`(?s)create table if not exists (\w+) \((.*?)\n\);`)

// schemaColumns parses sql/schema.sql into table -> column -> declared type.
func schemaColumns(t *testing.T) map[string]map[string]string {
	t.Helper()
	raw, err := os.ReadFile("../../../sql/schema.sql")
	require.NoError(t, err)

	tables := map[string]map[string]string{}
	for _, m := range tableBlockRe.FindAllStringSubmatch(string(raw), -1) {
		columns := map[string]string{}
		for _, line := range strings.Split(m[2], "\n") {
			fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(line), ","))
			if len(fields) < 2 || fields[0] == "primary" || strings.HasPrefix(fields[0], "--") {
				continue
			}
			typ := fields[1]
			if typ == "double" && len(fields) > 2 && fields[2] == "precision" {
				typ = "double precision"
			}
			columns[fields[0]] = typ
		}
		tables[m[1]] = columns
	}
	return tables
}

// columnTypesFor lists the declared types a Go field may bind into through
// pgx parameter encoding. Anything outside this set fails at exec time, not
// at compile time, so the pairing is pinned here.
func columnTypesFor(f reflect.Type) []string {
	for f.Kind() == reflect.Pointer {
		f = f.Elem()
	}
	switch {
	case f == reflect.TypeOf(time.Time{}):
		return []string{"timestamptz", "date"}
	case f.Kind() == reflect.Map:
		return []string{"jsonb"}
	case f.Kind() == reflect.String:
		return []string{"text"}
	case f.Kind() == reflect.Bool:
		return []string{"boolean"}
	case f.Kind() == reflect.Int || f.Kind() == reflect.Int64:
		return []string{"integer", "bigint"}
	case f.Kind() == reflect.Float64:
		return []string{"double precision"}
	}
	return nil
}

func fieldTypesByColumn(rowType reflect.Type) map[string]reflect.Type {
	out := map[string]reflect.Type{}
	for i := 0; i < rowType.NumField(); i++ {
		f := rowType.Field(i)
		if tag := f.Tag.Get("db"); tag != "" {
			out[tag] = f.Type
		}
	}
	return out
}

func TestSchemaMatchesBoundColumns(t *testing.T) {
	tables := schemaColumns(t)

	for _, tc := range []struct {
		table   string
		columns []string
		row     any
	}{
		{tableCatalog, datasetColumns, domain.Dataset{}},
		{tableResources, resourceColumns, domain.Resource{}},
		{tableOrganizations, organizationColumns, domain.Organization{}},
		{tableBouquets, bouquetColumns, domain.Bouquet{}},
		{tableMetrics, metricColumns, domain.Metric{}},
	} {
		declared, ok := tables[tc.table]
		require.True(t, ok, "table %s missing from schema", tc.table)

		byColumn := fieldTypesByColumn(reflect.TypeOf(tc.row))
		for _, col := range tc.columns {
			typ, ok := declared[col]
			require.True(t, ok, "column %s.%s missing from schema", tc.table, col)
			field, ok := byColumn[col]
			require.True(t, ok, "no %T field is bound to %s", tc.row, col)
			assert.Contains(t, columnTypesFor(field), typ, "%s.%s", tc.table, col)
		}
	}
}

// The derived year columns carry ints end to end; a text column here would
// reject the bound parameter and fail the upsert of every harvested dataset.
func TestSchemaHarvestYearColumnsAreIntegers(t *testing.T) {
	catalog := schemaColumns(t)[tableCatalog]
	assert.Equal(t, "integer", catalog["harvest__created_at__year"])
	assert.Equal(t, "integer", catalog["harvest__modified_at__year"])
}
