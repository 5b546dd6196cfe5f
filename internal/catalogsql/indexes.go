package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// indexesSQL is grounded on original_source/workers/compare_indexes.py.
// The pg_depend join is the constraint-backing-index suppression:
// SUPPLEMENTED FEATURE 5 (SPEC_FULL.md) — an index that backs a constraint
// emits its ADD CONSTRAINT DDL here too in the original, but this
// implementation additionally filters those rows out entirely (the
// WHERE NOT EXISTS clause), since the owning tables_pks/tables_uniques/
// tables_excludes category already reports that change and a duplicate
// indexes event would double the remediation statement.
const indexesSQL = `
SELECT DISTINCT n2.nspname AS index_namespace,
       i.relname AS index_name,
       PG_GET_INDEXDEF(i.oid) || E';\n' AS create_index_ddl,
       FORMAT('DROP INDEX %s.%s;', QUOTE_IDENT(n2.nspname), QUOTE_IDENT(i.relname)) AS drop_index_ddl
FROM pg_index x
JOIN pg_class c ON c.oid = x.indrelid
JOIN pg_class i ON i.oid = x.indexrelid
JOIN pg_namespace n1 ON c.relnamespace = n1.oid
JOIN pg_namespace n2 ON i.relnamespace = n2.oid
WHERE c.relkind IN ('r', 'm') AND i.relkind = 'i'
  AND n1.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND n1.nspname NOT LIKE 'pg%temp%'
  AND n2.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND n2.nspname NOT LIKE 'pg%temp%'
  AND NOT EXISTS (
      SELECT 1 FROM pg_depend d
      WHERE d.objid = x.indexrelid AND d.refclassid = 'pg_constraint'::regclass
  )
ORDER BY 1, 2
`

func init() {
	register(Query{
		Category:   events.Indexes,
		SQL:        indexesSQL,
		KeyColumns: []string{"index_namespace", "index_name"},
	})
}
