// Package rowdml generates the remediation SQL for a single row-data diff
// (spec section 4.4, "C6"): one INSERT, UPDATE, or DELETE statement per
// differing row, cast against the target column's formatted type and
// quoted with a dollar-quoted tag so arbitrary row content — embedded
// quotes, newlines, the lot — never needs escaping. This is grounded
// directly on the UPDATE/DELETE/INSERT string construction in
// original_source/workers/compare_tables_data.py's main comparison loop.
package rowdml

import (
	"fmt"
	"strings"

	"github.com/oss-tools/pgdbcompare/internal/catalogrow"
)

// quoteTag is the dollar-quote tag the original reaches for
// ("$data_comparer$...$data_comparer$") so generated literals never need to
// escape embedded quotes or newlines.
const quoteTag = "data_comparer"

// literal renders v as a dollar-quoted, type-cast SQL literal, or the bare
// NULL token when v is SQL NULL — the original never dollar-quotes NULL,
// since `NULL::type` is itself a valid, unambiguous literal.
func literal(v catalogrow.Value, sqlType string) string {
	if v.IsNull() {
		return "NULL"
	}
	return fmt.Sprintf("$%s$%s$%s$::%s", quoteTag, v.String(), quoteTag, sqlType)
}

// Insert builds an INSERT INTO statement for row, whose columns must all be
// present in types (TableSpec.ColumnTypes from internal/rowdiscovery).
// Column order follows cols, matching the original's "',' .join(v_table_2.Columns)".
func Insert(schema, table string, cols []string, row catalogrow.Row, types map[string]string) string {
	values := make([]string, len(cols))
	for i, c := range cols {
		values[i] = literal(row.MustGet(c), types[c])
	}
	return fmt.Sprintf(
		"INSERT INTO %s.%s (\n  %s\n) VALUES (\n  %s\n);",
		schema, table, strings.Join(cols, ","), strings.Join(values, ","),
	)
}

// Delete builds a DELETE statement keyed on keyCols, using row's current
// values for the WHERE clause.
func Delete(schema, table string, keyCols []string, row catalogrow.Row, types map[string]string) string {
	return fmt.Sprintf(
		"DELETE\nFROM %s.%s\nWHERE %s;",
		schema, table, condition(keyCols, row, types),
	)
}

// Update builds an UPDATE statement for the given changed columns, setting
// each to its new value from newRow, keyed by keyCols against newRow (the
// original keys the WHERE clause off "v_row_2", the target-side row, not
// the old one — identifying the row by its current/target key lets the
// statement still match after an earlier key-preserving column update).
func Update(schema, table string, keyCols, changedCols []string, newRow catalogrow.Row, types map[string]string) string {
	sets := make([]string, len(changedCols))
	for i, c := range changedCols {
		sets[i] = fmt.Sprintf("%s = %s", c, literal(newRow.MustGet(c), types[c]))
	}
	return fmt.Sprintf(
		"UPDATE %s.%s\nSET %s\nWHERE %s;",
		schema, table, strings.Join(sets, ","), condition(keyCols, newRow, types),
	)
}

func condition(cols []string, row catalogrow.Row, types map[string]string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s = %s", c, literal(row.MustGet(c), types[c]))
	}
	return strings.Join(parts, " AND ")
}
