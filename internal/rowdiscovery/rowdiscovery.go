// Package rowdiscovery finds which tables the row-data differ (spec
// section 4.4, "C6") should compare, and what key and column types each one
// needs. It is grounded on two pieces of
// original_source/workers/compare_tables_data.py: the leaf-table/key
// listing in get_compare_tables_data_tasks (the parents/children/
// select_tables/select_pks CTEs), run once; and the per-table
// v_column_type_dict query inside compare_tables_data itself, run once per
// discovered table. The second step fans out across tables concurrently
// with errgroup, bounded to a worker-friendly concurrency limit, since it
// is a one-shot discovery step the master performs before spawning any
// row-data producer (unlike the producer/consumer pool itself, which never
// cancels a sibling worker on one worker's failure).
package rowdiscovery

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// TableSpec describes one leaf table the row-data differ should compare:
// its identity, the ordered key columns to sort and merge by, and the
// formatted "name type" pairs needed to build literal casts in generated
// DML (internal/rowdml).
type TableSpec struct {
	Schema     string
	Table      string
	KeyColumns []string

	// ColumnTypes maps column name to its formatted SQL type, e.g.
	// "numeric(10, 2)" or "character varying(255)", as produced by
	// information_schema.columns' data_type/character_maximum_length/
	// numeric_precision/numeric_scale columns.
	ColumnTypes map[string]string

	// Columns preserves the table's column order, needed because
	// ColumnTypes is unordered and DML generation must emit columns in a
	// stable, deterministic sequence.
	Columns []string
}

// DefaultConcurrency bounds how many per-table column-type queries run at
// once during discovery.
const DefaultConcurrency = 8

// leafTableKeysSQL discovers every leaf base table (relkind 'r' ordinary or
// 'p' partitioned) and its primary-key-or-full-column-list comparison key.
// A table is a leaf iff it has no child in pg_inherits (the children CTE);
// partitioned parents are excluded from row comparison entirely since a
// child row is also visible through its parent and would double-count.
const leafTableKeysSQL = `
WITH parents AS (
    SELECT n.table_schema, c.table_name
    FROM (
        SELECT relnamespace, QUOTE_IDENT(relname) AS table_name, oid
        FROM pg_class
    ) c
    JOIN pg_inherits i ON i.inhparent = c.oid
    JOIN (
        SELECT oid, QUOTE_IDENT(nspname) AS table_schema
        FROM pg_namespace
    ) n ON c.relnamespace = n.oid
    WHERE n.table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
      AND n.table_schema NOT LIKE 'pg%temp%'
),
children AS (
    SELECT n.table_schema, c.table_name
    FROM (
        SELECT relnamespace, QUOTE_IDENT(relname) AS table_name, oid
        FROM pg_class
    ) c
    JOIN pg_inherits i ON i.inhrelid = c.oid
    JOIN (
        SELECT oid, QUOTE_IDENT(nspname) AS table_schema
        FROM pg_namespace
    ) n ON c.relnamespace = n.oid
    WHERE n.table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
      AND n.table_schema NOT LIKE 'pg%temp%'
),
select_tables AS (
    SELECT n.table_schema, c.table_name
    FROM (
        SELECT relnamespace, QUOTE_IDENT(relname) AS table_name
        FROM pg_class
        WHERE relkind IN ('r', 'p')
    ) c
    JOIN (
        SELECT oid, QUOTE_IDENT(nspname) AS table_schema
        FROM pg_namespace
    ) n ON c.relnamespace = n.oid
    LEFT JOIN parents p ON c.table_name = p.table_name AND n.table_schema = p.table_schema
    LEFT JOIN children ch ON c.table_name = ch.table_name AND n.table_schema = ch.table_schema
    WHERE n.table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
      AND n.table_schema NOT LIKE 'pg%temp%'
      AND p.table_name IS NULL
),
select_pks AS (
    SELECT tc.table_schema, tc.table_name,
           STRING_AGG(kc.column_name, ',' ORDER BY kc.ordinal_position) AS column_names
    FROM (
        SELECT table_schema, table_name, constraint_name
        FROM information_schema.table_constraints
        WHERE constraint_type = 'PRIMARY KEY'
          AND table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
          AND table_schema NOT LIKE 'pg%temp%'
    ) tc
    JOIN (
        SELECT table_schema, table_name, constraint_name,
               column_name, ordinal_position
        FROM information_schema.key_column_usage
        WHERE table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
          AND table_schema NOT LIKE 'pg%temp%'
    ) kc ON tc.table_name = kc.table_name AND tc.table_schema = kc.table_schema
        AND tc.constraint_name = kc.constraint_name
    GROUP BY tc.table_schema, tc.table_name
),
select_columns AS (
    SELECT table_schema, table_name,
           STRING_AGG(column_name, ',' ORDER BY ordinal_position) AS column_names
    FROM information_schema.columns
    WHERE table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
      AND table_schema NOT LIKE 'pg%temp%'
    GROUP BY table_schema, table_name
)
SELECT st.table_schema, st.table_name,
       COALESCE(sp.column_names, sc.column_names) AS table_key
FROM select_tables st
LEFT JOIN select_pks sp ON st.table_schema = sp.table_schema AND st.table_name = sp.table_name
JOIN select_columns sc ON st.table_schema = sc.table_schema AND st.table_name = sc.table_name
ORDER BY st.table_schema, st.table_name
`

// columnTypesSQL mirrors compare_tables_data.py's v_column_type_dict
// discovery query, scoped to a single table.
const columnTypesSQL = `
SELECT column_name,
       ordinal_position,
       FORMAT(
           '%s%s',
           data_type,
           (CASE WHEN character_maximum_length IS NOT NULL
                 THEN FORMAT('(%s)', character_maximum_length)
                 WHEN numeric_precision IS NOT NULL AND NULLIF(numeric_scale, 0) IS NOT NULL
                 THEN FORMAT('(%s, %s)', numeric_precision, numeric_scale)
                 ELSE ''
            END)
       ) AS data_type
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position
`

// Discover runs leafTableKeysSQL once to list comparable leaf tables, then
// fans out across them concurrently (bounded by concurrency, or
// DefaultConcurrency if <= 0) to fetch each table's column types. The
// returned slice preserves leafTableKeysSQL's schema/table ORDER BY, so
// callers get a stable, deterministic table order regardless of fan-out
// completion order.
//
// pool, not a single *pgx.Conn, because the per-table column-type queries
// below run concurrently: a bare pgx.Conn is documented as unsafe for
// concurrent use by more than one goroutine, and only a pool can hand each
// goroutine its own connection.
func Discover(ctx context.Context, pool *pgxpool.Pool, concurrency int) ([]TableSpec, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	rows, err := pool.Query(ctx, leafTableKeysSQL)
	if err != nil {
		return nil, errors.Wrap(err, "rowdiscovery: query leaf table keys")
	}

	var specs []TableSpec
	for rows.Next() {
		var schema, table, tableKey string
		if err := rows.Scan(&schema, &table, &tableKey); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "rowdiscovery: scan leaf table key")
		}
		specs = append(specs, TableSpec{
			Schema:     schema,
			Table:      table,
			KeyColumns: splitNonEmpty(tableKey, ","),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rowdiscovery: iterate leaf table keys")
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range specs {
		i := i
		g.Go(func() error {
			cols, types, err := columnTypes(gctx, pool, specs[i].Schema, specs[i].Table)
			if err != nil {
				return err
			}
			mu.Lock()
			specs[i].Columns = cols
			specs[i].ColumnTypes = types
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return specs, nil
}

func columnTypes(ctx context.Context, pool *pgxpool.Pool, schema, table string) ([]string, map[string]string, error) {
	rows, err := pool.Query(ctx, columnTypesSQL, schema, table)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "rowdiscovery: query column types for %s.%s", schema, table)
	}
	defer rows.Close()

	var cols []string
	types := make(map[string]string)
	for rows.Next() {
		var name, dataType string
		var ordinal int
		if err := rows.Scan(&name, &ordinal, &dataType); err != nil {
			return nil, nil, errors.Wrapf(err, "rowdiscovery: scan column type for %s.%s", schema, table)
		}
		cols = append(cols, name)
		types[name] = dataType
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrapf(err, "rowdiscovery: iterate column types for %s.%s", schema, table)
	}
	return cols, types, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
