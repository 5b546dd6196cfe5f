package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// viewsSQL is grounded on original_source/workers/compare_views.py. A view's
// only content field is its full definition text, so it is a DDL-only
// category: UPDATED emits a single CREATE OR REPLACE VIEW.
const viewsSQL = `
SELECT QUOTE_IDENT(n.nspname) AS view_schema,
       QUOTE_IDENT(v.relname) AS view_name,
       PG_GET_VIEWDEF(v.oid, true) AS view_definition,
       'CREATE OR REPLACE VIEW ' || FORMAT('%s.%s', QUOTE_IDENT(n.nspname), QUOTE_IDENT(v.relname)) || E' AS\n' || PG_GET_VIEWDEF(v.oid, true) AS create_view_ddl,
       FORMAT('DROP VIEW %s.%s;', QUOTE_IDENT(n.nspname), QUOTE_IDENT(v.relname)) AS drop_view_ddl
FROM pg_class v
JOIN pg_namespace n ON v.relnamespace = n.oid
WHERE v.relkind = 'v'
  AND n.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND n.nspname NOT LIKE 'pg%temp%'
ORDER BY 1, 2
`

func init() {
	register(Query{
		Category:   events.Views,
		SQL:        viewsSQL,
		KeyColumns: []string{"view_schema", "view_name"},
	})
}
