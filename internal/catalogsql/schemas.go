package catalogsql

import "github.com/oss-tools/pgdbcompare/internal/events"

// schemasSQL is grounded on original_source/workers/compare_schemas.py's
// v_sql: one CTE per DDL fragment (comment, owner, grants), stitched
// together into a single create_schema_ddl column. Schemas provide no
// UPDATED callback upstream (spec section 4.2: "a schema is matched solely
// by name"), so this query's only comparable content is its own existence.
const schemasSQL = `
WITH obj AS (
    SELECT n.oid,
           n.nspname,
           pg_get_userbyid(n.nspowner) AS owner,
           'SCHEMA' AS sql_kind,
           QUOTE_IDENT(n.nspname) AS sql_identifier
    FROM pg_namespace n
    WHERE ` + systemSchemaExclusion + `
),
comment AS (
    SELECT sql_identifier,
           FORMAT(E'COMMENT ON %s %s IS %L;\n\n', sql_kind, sql_identifier, obj_description(oid)) AS text
    FROM obj
),
alterowner AS (
    SELECT sql_identifier,
           FORMAT(E'ALTER %s %s OWNER TO %s;\n\n', sql_kind, sql_identifier, QUOTE_IDENT(owner)) AS text
    FROM obj
),
privileges AS (
    SELECT QUOTE_IDENT(n.nspname) AS nspname,
           grantee.rolname AS grantee,
           n.privilege_type AS privilege_type,
           n.is_grantable AS is_grantable
    FROM (
        SELECT nspname, nspowner,
               (ACLEXPLODE(COALESCE(nspacl, ACLDEFAULT('n', nspowner)))).grantee AS grantee,
               (ACLEXPLODE(COALESCE(nspacl, ACLDEFAULT('n', nspowner)))).privilege_type AS privilege_type,
               (ACLEXPLODE(COALESCE(nspacl, ACLDEFAULT('n', nspowner)))).is_grantable AS is_grantable
        FROM pg_namespace
        WHERE ` + systemSchemaExclusion + `
    ) n
    INNER JOIN (SELECT oid, rolname FROM pg_roles UNION ALL SELECT 0, 'PUBLIC') grantee
            ON n.grantee = grantee.oid
),
grants AS (
    SELECT nspname,
           COALESCE(STRING_AGG(
               FORMAT(E'GRANT %s ON SCHEMA %s TO %s%s;\n', privilege_type, nspname,
                   CASE grantee WHEN 'PUBLIC' THEN 'PUBLIC' ELSE QUOTE_IDENT(grantee) END,
                   CASE is_grantable WHEN true THEN ' WITH GRANT OPTION' ELSE '' END),
           ''), '') AS text
    FROM privileges
    GROUP BY nspname
)
SELECT QUOTE_IDENT(n.nspname) AS schema_name,
       FORMAT(E'CREATE SCHEMA %s;\n\n', QUOTE_IDENT(n.nspname)) || c.text || a.text || COALESCE(g.text, '') AS create_schema_ddl,
       FORMAT('DROP SCHEMA %s;', QUOTE_IDENT(n.nspname)) AS drop_schema_ddl
FROM pg_namespace n
INNER JOIN comment c ON QUOTE_IDENT(n.nspname) = c.sql_identifier
INNER JOIN alterowner a ON QUOTE_IDENT(n.nspname) = a.sql_identifier
LEFT JOIN grants g ON QUOTE_IDENT(n.nspname) = g.nspname
WHERE ` + systemSchemaExclusion + `
ORDER BY 1
`

func init() {
	register(Query{
		Category:   events.Schemas,
		SQL:        schemasSQL,
		KeyColumns: []string{"schema_name"},
	})
}
