package xlsxsink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/oss-tools/pgdbcompare/internal/engine"
)

func TestWriteBatchCreatesOneSheetPerCategoryLazily(t *testing.T) {
	sink := New(t.TempDir() + "/report.xlsx")

	err := sink.WriteBatch(context.Background(), []engine.DiffEventRecord{
		{Category: "schemas", Status: "INSERTED", SchemaName: "s1", SQL: `CREATE SCHEMA "s1";`},
		{Category: "tables_columns", Status: "UPDATED", SchemaName: "public", TableName: "t1",
			ColumnName: "a", ChangedColumns: []string{"data_type"}, SQL: "ALTER TABLE public.t1 ALTER COLUMN a TYPE bigint;"},
	})
	require.NoError(t, err)

	require.Len(t, sink.sheets, 2)

	schemasSheet := sink.sheets["schemas"]
	require.Len(t, schemasSheet.Rows, 2) // header + one data row
	assert.Equal(t, "schema_name", schemasSheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "s1", schemasSheet.Rows[1].Cells[0].Value)

	colsSheet := sink.sheets["tables_columns"]
	require.Len(t, colsSheet.Rows, 2)
	assert.Equal(t, []string{"schema_name", "table_name", "column_name", "key", "status", "diff", "sql_to_fix"},
		cellValues(colsSheet.Rows[0]))
	assert.Equal(t, "data_type", colsSheet.Rows[1].Cells[5].Value)
}

func TestWriteBatchAppendsToExistingSheet(t *testing.T) {
	sink := New(t.TempDir() + "/report.xlsx")

	records := []engine.DiffEventRecord{
		{Category: "tables", Status: "INSERTED", SchemaName: "public", TableName: "a"},
		{Category: "tables", Status: "DELETED", SchemaName: "public", TableName: "b"},
	}
	require.NoError(t, sink.WriteBatch(context.Background(), records))

	require.Len(t, sink.sheets, 1)
	assert.Len(t, sink.sheets["tables"].Rows, 3) // header + two rows
}

func cellValues(row *xlsx.Row) []string {
	vals := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		vals[i] = c.Value
	}
	return vals
}
