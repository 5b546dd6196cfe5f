// Package catalogsql holds the one authoritative catalog-introspection SELECT
// per object category (C1). Each query excludes system schemas, quotes
// identifiers with QUOTE_IDENT, orders by the diff key ascending, and
// precomputes the add/drop DDL server-side so the differ stays schema-agnostic.
package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// systemSchemaExclusion is the WHERE fragment every catalog query applies to
// its namespace join, grounded on the identical filter repeated verbatim
// across every worker in original_source/workers/compare_*.py.
const systemSchemaExclusion = `nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND nspname NOT LIKE 'pg%temp%'`

// Query is one category's catalog-introspection statement plus the ordered
// list of columns that form its diff key.
type Query struct {
	Category   events.Category
	SQL        string
	KeyColumns []string
}

// registry maps every structural category to its Query. tables_data is
// deliberately absent: its SQL is generated per-table at runtime by
// internal/rowdiscovery, not held as one static statement.
var registry = map[events.Category]Query{}

func register(q Query) {
	registry[q.Category] = q
}

// For returns the catalog query for a structural category. The boolean
// return is false for tables_data and any unregistered category.
func For(c events.Category) (Query, bool) {
	q, ok := registry[c]
	return q, ok
}

// All returns every registered query, ordered the same way events.All() is.
func All() []Query {
	out := make([]Query, 0, len(events.All()))
	for _, c := range events.All() {
		if q, ok := registry[c]; ok {
			out = append(out, q)
		}
	}
	return out
}
