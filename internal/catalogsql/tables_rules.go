package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// tablesRulesSQL has no dedicated worker file in original_source/ (the
// retrieval pack's Python reference omits it), so this query is built in
// the same shape as tables_triggers.go and views.go: pg_rewrite
// holds one row per non-default rule, pg_get_ruledef(oid, true) reproduces
// its CREATE RULE text verbatim. DDL-only category.
const tablesRulesSQL = `
SELECT QUOTE_IDENT(n.nspname) AS schema_name,
       QUOTE_IDENT(c.relname) AS table_name,
       QUOTE_IDENT(r.rulename) AS rule_name,
       PG_GET_RULEDEF(r.oid, true) AS rule_definition,
       FORMAT('%s;', PG_GET_RULEDEF(r.oid, true)) AS create_rule_ddl,
       FORMAT('DROP RULE %s ON %s.%s;', QUOTE_IDENT(r.rulename), QUOTE_IDENT(n.nspname), QUOTE_IDENT(c.relname)) AS drop_rule_ddl
FROM pg_rewrite r
JOIN pg_class c ON c.oid = r.ev_class
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE r.rulename <> '_RETURN'
  AND n.nspname NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND n.nspname NOT LIKE 'pg%temp%'
ORDER BY 1, 2, 3
`

func init() {
	register(Query{
		Category:   events.TablesRules,
		SQL:        tablesRulesSQL,
		KeyColumns: []string{"schema_name", "table_name", "rule_name"},
	})
}
