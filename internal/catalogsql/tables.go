package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// tablesSQL is grounded on original_source/workers/compare_tables.py:
// CREATE TABLE (CREATE PARTITIONED TABLE for relkind 'p') with the locally
// defined columns, followed by per-column ALTER ... SET DEFAULT,
// ALTER ... OWNER TO, and GRANT statements. It does not emit UNLOGGED or
// TEMPORARY, INHERITS, a partition bound, or a PARTITION BY clause. This
// category has no UPDATED callback upstream either: column-level content
// changes surface through tables_columns instead, so tables only tracks
// whole-object create/drop.
const tablesSQL = `
WITH obj AS (
    SELECT c.oid, c.relname AS name, n.nspname AS namespace,
           CASE c.relkind WHEN 'p' THEN 'PARTITIONED TABLE' ELSE 'TABLE' END AS kind,
           pg_get_userbyid(c.relowner) AS owner,
           format('%s.%s', n.nspname, c.relname)::regclass::text AS sql_identifier
    FROM pg_class c
    JOIN pg_namespace n ON n.oid = c.relnamespace
    WHERE c.relkind IN ('r', 'p') AND ` + systemSchemaExclusion + `
),
columns AS (
    SELECT a.attname AS name, a.attnotnull AS not_null, def.adsrc AS "default",
           a.attislocal AS is_local, a.attnum AS ord, n.nspname AS namespace, c.relname AS class_name,
           format('%I %s%s', a.attname, format_type(a.atttypid, a.atttypmod),
               CASE WHEN a.attnotnull THEN ' NOT NULL' ELSE '' END) AS definition
    FROM pg_class c
    JOIN pg_namespace n ON n.oid = c.relnamespace
    JOIN pg_attribute a ON c.oid = a.attrelid
    LEFT JOIN pg_attrdef def ON c.oid = def.adrelid AND a.attnum = def.adnum
    WHERE a.attnum > 0 AND NOT a.attisdropped AND ` + systemSchemaExclusion + `
),
createtable AS (
    SELECT obj.namespace, obj.name,
           'CREATE ' || obj.kind || ' ' || obj.sql_identifier ||
           E' (\n' || COALESCE((
               SELECT string_agg('    ' || definition, E',\n')
               FROM columns WHERE is_local AND namespace = obj.namespace AND class_name = obj.name
           ), '') || E'\n);\n' AS text
    FROM obj
),
altertabledefaults AS (
    SELECT namespace, class_name,
           COALESCE(string_agg('ALTER TABLE ' || format('%s.%s', namespace, class_name) ||
               ' ALTER ' || quote_ident(name) || ' SET DEFAULT ' || "default", E';\n') || E';\n\n', '') AS text
    FROM columns
    WHERE "default" IS NOT NULL
    GROUP BY namespace, class_name
),
alterowner AS (
    SELECT namespace, name,
           'ALTER TABLE ' || sql_identifier || ' OWNER TO ' || quote_ident(owner) || E';\n\n' AS text
    FROM obj
),
privileges AS (
    SELECT t.namespace, t.name AS class_name, t.owner,
           grantee.rolname AS grantee,
           t.privilege_type,
           t.is_grantable
    FROM (
        SELECT n.nspname AS namespace, c.relname AS name, pg_get_userbyid(c.relowner) AS owner,
               (ACLEXPLODE(COALESCE(c.relacl, ACLDEFAULT('r', c.relowner)))).grantee AS grantee,
               (ACLEXPLODE(COALESCE(c.relacl, ACLDEFAULT('r', c.relowner)))).privilege_type AS privilege_type,
               (ACLEXPLODE(COALESCE(c.relacl, ACLDEFAULT('r', c.relowner)))).is_grantable AS is_grantable
        FROM pg_class c
        JOIN pg_namespace n ON n.oid = c.relnamespace
        WHERE c.relkind IN ('r', 'p') AND ` + systemSchemaExclusion + `
    ) t
    INNER JOIN (SELECT oid, rolname FROM pg_roles UNION ALL SELECT 0, 'PUBLIC') grantee
            ON t.grantee = grantee.oid
    WHERE grantee.rolname <> t.owner
),
grants AS (
    SELECT namespace, class_name,
           COALESCE(STRING_AGG(
               FORMAT(E'GRANT %s ON TABLE %s.%s TO %s%s;\n', privilege_type,
                   QUOTE_IDENT(namespace), QUOTE_IDENT(class_name),
                   CASE grantee WHEN 'PUBLIC' THEN 'PUBLIC' ELSE QUOTE_IDENT(grantee) END,
                   CASE is_grantable WHEN true THEN ' WITH GRANT OPTION' ELSE '' END),
           ''), '') AS text
    FROM privileges
    GROUP BY namespace, class_name
)
SELECT QUOTE_IDENT(ct.namespace) AS table_schema,
       QUOTE_IDENT(ct.name) AS table_name,
       ct.text || COALESCE(atd.text, '') || COALESCE(ao.text, '') || COALESCE(g.text, '') AS create_table_ddl,
       FORMAT('DROP TABLE %s.%s;', QUOTE_IDENT(ct.namespace), QUOTE_IDENT(ct.name)) AS drop_table_ddl
FROM createtable ct
LEFT JOIN altertabledefaults atd ON ct.namespace = atd.namespace AND ct.name = atd.class_name
LEFT JOIN alterowner ao ON ct.namespace = ao.namespace AND ct.name = ao.name
LEFT JOIN grants g ON ct.namespace = g.namespace AND ct.name = g.class_name
ORDER BY 1, 2
`

func init() {
	register(Query{
		Category:   events.Tables,
		SQL:        tablesSQL,
		KeyColumns: []string{"table_schema", "table_name"},
	})
}
