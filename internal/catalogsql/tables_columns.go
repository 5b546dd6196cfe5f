package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// tablesColumnsSQL is grounded on
// original_source/workers/compare_tables_columns.py. This is the first of
// the three categories whose UPDATED expansion policy emits one event per
// differing content field rather than a single DROP+ADD (spec section 4.3):
// data_type, not_null, column_default are each independently alterable.
const tablesColumnsSQL = `
SELECT QUOTE_IDENT(s.nspname) AS table_schema,
       QUOTE_IDENT(c.relname) AS table_name,
       QUOTE_IDENT(a.attname) AS column_name,
       FORMAT_TYPE(t.oid, a.atttypmod) AS data_type,
       a.attnotnull AS not_null,
       def.adsrc AS column_default,
       co.collname AS collation,
       FORMAT('ALTER TABLE %s.%s ADD COLUMN %I %s%s%s;',
           QUOTE_IDENT(s.nspname), QUOTE_IDENT(c.relname), a.attname::text,
           FORMAT_TYPE(t.oid, a.atttypmod),
           CASE WHEN co.collname IS NOT NULL THEN ' COLLATE ' || QUOTE_IDENT(co.collname) ELSE '' END,
           CASE WHEN a.attnotnull THEN ' NOT NULL' ELSE '' END) AS add_column_ddl,
       FORMAT('ALTER TABLE %s.%s DROP COLUMN %I;',
           QUOTE_IDENT(s.nspname), QUOTE_IDENT(c.relname), a.attname::text) AS drop_column_ddl
FROM pg_class c
JOIN pg_namespace s ON s.oid = c.relnamespace
JOIN pg_attribute a ON c.oid = a.attrelid
LEFT JOIN pg_attrdef def ON c.oid = def.adrelid AND a.attnum = def.adnum
LEFT JOIN pg_type t ON t.oid = a.atttypid
LEFT JOIN pg_collation co ON co.oid = a.attcollation AND a.attcollation <> t.typcollation
WHERE c.relkind IN ('r', 'p') AND a.attnum > 0 AND NOT a.attisdropped
  AND s.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND s.nspname NOT LIKE 'pg%temp%'
ORDER BY QUOTE_IDENT(s.nspname), QUOTE_IDENT(c.relname), QUOTE_IDENT(a.attname)
`

func init() {
	register(Query{
		Category:   events.TablesColumns,
		SQL:        tablesColumnsSQL,
		KeyColumns: []string{"table_schema", "table_name", "column_name"},
	})
}
