package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// tablesTriggersSQL is grounded on
// original_source/workers/compare_tables_triggers.py. trigger_enabled and
// trigger_definition are independently alterable content fields (spec
// section 4.3): an enable/disable change emits ALTER TABLE ... ENABLE|
// DISABLE TRIGGER, a definition change emits DROP then CREATE, in that
// order (spec section 9's design-note fix for the original's swapped order).
const tablesTriggersSQL = `
SELECT QUOTE_IDENT(n.nspname) AS schema_name,
       QUOTE_IDENT(c.relname) AS table_name,
       QUOTE_IDENT(t.tgname) AS trigger_name,
       t.tgenabled AS trigger_enabled,
       PG_GET_TRIGGERDEF(t.oid) AS trigger_definition,
       FORMAT('%s;', PG_GET_TRIGGERDEF(t.oid)) AS create_trigger_ddl,
       FORMAT('DROP TRIGGER %s ON %s.%s;', QUOTE_IDENT(t.tgname), QUOTE_IDENT(n.nspname), QUOTE_IDENT(c.relname)) AS drop_trigger_ddl
FROM pg_trigger t
JOIN pg_class c ON c.oid = t.tgrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE NOT t.tgisinternal
  AND n.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND n.nspname NOT LIKE 'pg%temp%'
ORDER BY 1, 2, 3
`

func init() {
	register(Query{
		Category:   events.TablesTriggers,
		SQL:        tablesTriggersSQL,
		KeyColumns: []string{"schema_name", "table_name", "trigger_name"},
	})
}
