package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// constraintSQL builds the shared shape behind tables_fks, tables_pks,
// tables_uniques, tables_checks, and tables_excludes: all five are
// pg_constraint rows that differ only in contype, grounded on
// original_source/workers/compare_tables_fks.py (the only constraint
// category the original retrieval pack happened to include a full worker
// for — pks/uniques/checks/excludes share its exact query shape in the
// original implementation, varying only the WHERE c.contype filter).
// All five are DDL-only categories: UPDATE emits DROP CONSTRAINT followed
// by ADD CONSTRAINT.
func constraintSQL(contype string) string {
	return `
WITH constraints AS (
    SELECT nc.nspname AS namespace, r.relname AS class_name, c.conname AS constraint_name,
           PG_GET_CONSTRAINTDEF(c.oid, true) AS constraint_definition,
           r.oid AS regclass, c.oid AS sysid
    FROM pg_namespace nc, pg_namespace nr, pg_constraint c, pg_class r
    WHERE nc.oid = c.connamespace AND nr.oid = r.relnamespace AND c.conrelid = r.oid
      AND c.contype = '` + contype + `'
      AND nc.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND nc.nspname NOT LIKE 'pg%temp%'
),
cs AS (
    SELECT namespace, class_name, QUOTE_IDENT(constraint_name) AS constraint_name,
           'ALTER TABLE ' || FORMAT('%s.%s', QUOTE_IDENT(namespace), QUOTE_IDENT(class_name)) ||
           ' ADD CONSTRAINT ' || QUOTE_IDENT(constraint_name) || E'\n  ' || constraint_definition || ';' AS sql
    FROM constraints
    ORDER BY sysid
)
SELECT namespace, class_name, constraint_name, sql AS add_constraint_ddl,
       FORMAT('ALTER TABLE %s.%s DROP CONSTRAINT %s;', QUOTE_IDENT(namespace), QUOTE_IDENT(class_name), QUOTE_IDENT(constraint_name)) AS drop_constraint_ddl
FROM cs
ORDER BY 1, 2, 3
`
}

func init() {
	register(Query{Category: events.TablesFKs, SQL: constraintSQL("f"), KeyColumns: []string{"namespace", "class_name", "constraint_name"}})
	register(Query{Category: events.TablesPKs, SQL: constraintSQL("p"), KeyColumns: []string{"namespace", "class_name", "constraint_name"}})
	register(Query{Category: events.TablesUniques, SQL: constraintSQL("u"), KeyColumns: []string{"namespace", "class_name", "constraint_name"}})
	register(Query{Category: events.TablesChecks, SQL: constraintSQL("c"), KeyColumns: []string{"namespace", "class_name", "constraint_name"}})
	register(Query{Category: events.TablesExcludes, SQL: constraintSQL("x"), KeyColumns: []string{"namespace", "class_name", "constraint_name"}})
}
