package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oss-tools/pgdbcompare/internal/catalogrow"
	"github.com/oss-tools/pgdbcompare/internal/rowdiscovery"
	"github.com/oss-tools/pgdbcompare/internal/sortedmerge"
)

func TestQuotedOrderByQuotesEachKeyColumn(t *testing.T) {
	assert.Equal(t, `"id", "tenant_id"`, quotedOrderBy([]string{"id", "tenant_id"}))
}

func TestSelectAllSQLOrdersByQuotedKeys(t *testing.T) {
	sql := selectAllSQL(`"public"`, `"accounts"`, []string{"id"})
	assert.Equal(t, `SELECT * FROM "public"."accounts" ORDER BY "id"`, sql)
}

func testRow(id string, balance string) catalogrow.Row {
	return catalogrow.NewRow(
		[]string{"id", "balance"},
		[]catalogrow.Value{catalogrow.FromAny(id), catalogrow.FromAny(balance)},
	)
}

func TestToRowEventBuildsInsertForInsertedStatus(t *testing.T) {
	p := &RowProducer{Spec: rowdiscovery.TableSpec{
		Schema: "public", Table: "accounts",
		KeyColumns: []string{"id"},
		Columns:    []string{"id", "balance"},
		ColumnTypes: map[string]string{"id": "text", "balance": "text"},
	}}

	ev, ok := p.toRowEvent(sortedmerge.Diff{Status: sortedmerge.StatusInserted, Row: testRow("1", "100")})
	assert.True(t, ok)
	assert.Contains(t, ev.SQL, "INSERT INTO public.accounts")
	assert.Equal(t, "public", ev.Identity.SchemaName)
	assert.Equal(t, "accounts", ev.Identity.TableName)
}

func TestToRowEventBuildsDeleteForDeletedStatus(t *testing.T) {
	p := &RowProducer{Spec: rowdiscovery.TableSpec{
		Schema: "public", Table: "accounts",
		KeyColumns:  []string{"id"},
		Columns:     []string{"id", "balance"},
		ColumnTypes: map[string]string{"id": "text", "balance": "text"},
	}}

	ev, ok := p.toRowEvent(sortedmerge.Diff{Status: sortedmerge.StatusDeleted, Row: testRow("2", "50")})
	assert.True(t, ok)
	assert.Contains(t, ev.SQL, "DELETE")
	assert.Contains(t, ev.SQL, "FROM public.accounts")
}

func TestToRowEventBuildsUpdateForUpdatedStatus(t *testing.T) {
	p := &RowProducer{Spec: rowdiscovery.TableSpec{
		Schema: "public", Table: "accounts",
		KeyColumns:  []string{"id"},
		Columns:     []string{"id", "balance"},
		ColumnTypes: map[string]string{"id": "text", "balance": "text"},
	}}

	ev, ok := p.toRowEvent(sortedmerge.Diff{
		Status:  sortedmerge.StatusUpdated,
		OldRow:  testRow("1", "100"),
		NewRow:  testRow("1", "200"),
		Changed: []string{"balance"},
	})
	assert.True(t, ok)
	assert.Contains(t, ev.SQL, "UPDATE public.accounts")
	assert.Equal(t, []string{"balance"}, ev.ChangedColumns)
}

func TestToRowEventSkipsEqualStatus(t *testing.T) {
	p := &RowProducer{}
	_, ok := p.toRowEvent(sortedmerge.Diff{Status: sortedmerge.StatusEqual})
	assert.False(t, ok)
}

func TestExcludeFilterRemovesConfiguredTablesOnly(t *testing.T) {
	specs := []rowdiscovery.TableSpec{
		{Schema: `"public"`, Table: `"accounts"`},
		{Schema: `"public"`, Table: `"audit_log"`},
	}
	isExcluded := func(schema, table string) bool { return schema == "public" && table == "audit_log" }

	out := excludeFilter(specs, isExcluded)

	assert.Len(t, out, 1)
	assert.Equal(t, `"accounts"`, out[0].Table)
}
