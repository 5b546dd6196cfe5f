package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// sequencesSQL is grounded on original_source/workers/compare_sequences.py,
// reading from information_schema.sequences rather than pg_class directly.
// Like tables_columns, each attribute (start_value, minimum_value,
// maximum_value, increment, cycle_option) is independently alterable, so
// UPDATED expands to one event per differing attribute.
const sequencesSQL = `
SELECT QUOTE_IDENT(sequence_schema) AS sequence_schema,
       QUOTE_IDENT(sequence_name) AS sequence_name,
       start_value, minimum_value, maximum_value, increment, cycle_option,
       FORMAT('CREATE SEQUENCE %s.%s INCREMENT BY %s MINVALUE %s MAXVALUE %s START WITH %s%s;',
           QUOTE_IDENT(sequence_schema), QUOTE_IDENT(sequence_name), increment, minimum_value, maximum_value, start_value,
           CASE cycle_option WHEN 'YES' THEN ' CYCLE' ELSE '' END) AS create_sequence_ddl,
       FORMAT('DROP SEQUENCE %s.%s;', QUOTE_IDENT(sequence_schema), QUOTE_IDENT(sequence_name)) AS drop_sequence_ddl
FROM information_schema.sequences
WHERE sequence_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast') AND sequence_schema NOT LIKE 'pg%temp%'
ORDER BY 1, 2
`

func init() {
	register(Query{
		Category:   events.Sequences,
		SQL:        sequencesSQL,
		KeyColumns: []string{"sequence_schema", "sequence_name"},
	})
}
