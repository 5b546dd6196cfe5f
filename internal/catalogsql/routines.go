package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// routineSQL builds the shared pg_proc shape behind functions,
// trigger_functions and procedures (spec section 4.1: "diff key is
// schema_name, function_id where function_id is the function's
// signature"). None of the three has a dedicated original_source worker
// file, so this is built directly from the spec bullet using
// pg_get_functiondef, the same catalog function the teacher's own
// pkg/pg_lineage package reads function bodies through (catalog.go). kind
// selects PostgreSQL 11+'s prokind discriminator: 'f' ordinary function,
// 'p' procedure; trigger functions are ordinary functions whose return
// type is the pseudo-type "trigger".
func routineSQL(kind string, triggerOnly bool) string {
	extra := ""
	if triggerOnly {
		extra = ` AND t.typname = 'trigger'`
	} else if kind == "f" {
		extra = ` AND t.typname <> 'trigger'`
	}
	return `
SELECT QUOTE_IDENT(n.nspname) AS schema_name,
       p.oid::regprocedure::text AS function_id,
       PG_GET_FUNCTIONDEF(p.oid) AS function_definition,
       FORMAT('%s;', PG_GET_FUNCTIONDEF(p.oid)) AS create_function_ddl,
       FORMAT('DROP ROUTINE %s;', p.oid::regprocedure::text) AS drop_function_ddl
FROM pg_proc p
JOIN pg_namespace n ON n.oid = p.pronamespace
JOIN pg_type t ON t.oid = p.prorettype
WHERE p.prokind = '` + kind + `'` + extra + `
  AND n.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND n.nspname NOT LIKE 'pg%temp%'
ORDER BY 1, 2
`
}

func init() {
	register(Query{Category: events.Functions, SQL: routineSQL("f", false), KeyColumns: []string{"schema_name", "function_id"}})
	register(Query{Category: events.TriggerFunctions, SQL: routineSQL("f", true), KeyColumns: []string{"schema_name", "function_id"}})
	register(Query{Category: events.Procedures, SQL: routineSQL("p", false), KeyColumns: []string{"schema_name", "function_id"}})
}
