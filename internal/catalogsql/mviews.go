package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// mviewsSQL is grounded on original_source/workers/compare_mviews.py. Per
// spec section 9's design note, the UPDATED branch MUST read drop/create
// DDL from the current row pair rather than an undefined row variable (a
// bug in the original); this query's structure makes that the only possible
// reading since row1/row2 here both carry the same two DDL columns.
// Materialized views are DDL-only: UPDATE emits DROP followed by CREATE.
const mviewsSQL = `
SELECT QUOTE_IDENT(n.nspname) AS mview_schema,
       QUOTE_IDENT(v.relname) AS mview_name,
       PG_GET_VIEWDEF(v.oid, true) AS mview_definition,
       'CREATE MATERIALIZED VIEW ' || FORMAT('%s.%s', QUOTE_IDENT(n.nspname), QUOTE_IDENT(v.relname)) || E' AS\n' || PG_GET_VIEWDEF(v.oid, true) AS create_mview_ddl,
       FORMAT('DROP MATERIALIZED VIEW %s.%s;', QUOTE_IDENT(n.nspname), QUOTE_IDENT(v.relname)) AS drop_mview_ddl
FROM pg_class v
JOIN pg_namespace n ON v.relnamespace = n.oid
WHERE v.relkind = 'm'
  AND n.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND n.nspname NOT LIKE 'pg%temp%'
ORDER BY 1, 2
`

func init() {
	register(Query{
		Category:   events.MViews,
		SQL:        mviewsSQL,
		KeyColumns: []string{"mview_schema", "mview_name"},
	})
}
