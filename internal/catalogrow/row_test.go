package catalogrow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oss-tools/pgdbcompare/internal/catalogrow"
)

func row(cols []string, vals ...catalogrow.Value) catalogrow.Row {
	return catalogrow.NewRow(cols, vals)
}

func TestValueEqualNullAware(t *testing.T) {
	assert.True(t, catalogrow.Equal(catalogrow.NewNull(), catalogrow.NewNull()))
	assert.False(t, catalogrow.Equal(catalogrow.NewNull(), catalogrow.NewInt(0)))
	assert.False(t, catalogrow.Equal(catalogrow.NewInt(1), catalogrow.NewText("1")))
	assert.True(t, catalogrow.Equal(catalogrow.NewInt(7), catalogrow.NewInt(7)))
}

func TestValueEqualTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.True(t, catalogrow.Equal(catalogrow.NewTimestamp(now), catalogrow.NewTimestamp(now)))
	assert.False(t, catalogrow.Equal(catalogrow.NewTimestamp(now), catalogrow.NewTimestamp(now.Add(time.Second))))
}

func TestFromAny(t *testing.T) {
	assert.Equal(t, catalogrow.Int, catalogrow.FromAny(int32(4)).Kind)
	assert.Equal(t, catalogrow.Null, catalogrow.FromAny(nil).Kind)
	assert.Equal(t, catalogrow.Text, catalogrow.FromAny("x").Kind)
}

func TestKeyStringJoinsInOrder(t *testing.T) {
	r := row([]string{"schema_name", "table_name"}, catalogrow.NewText("public"), catalogrow.NewText("orders"))
	assert.Equal(t, "public_orders", catalogrow.KeyString(r, []string{"schema_name", "table_name"}))
}

func TestSameColumnsDetectsMismatch(t *testing.T) {
	a := row([]string{"a", "b"}, catalogrow.NewInt(1), catalogrow.NewInt(2))
	b := row([]string{"a", "c"}, catalogrow.NewInt(1), catalogrow.NewInt(2))
	assert.False(t, catalogrow.SameColumns(a, b))
}

func TestEqualOnIgnoresKeyColumns(t *testing.T) {
	a := row([]string{"id", "status"}, catalogrow.NewInt(1), catalogrow.NewText("open"))
	b := row([]string{"id", "status"}, catalogrow.NewInt(2), catalogrow.NewText("open"))
	assert.True(t, catalogrow.EqualOn(a, b, []string{"id"}))

	c := row([]string{"id", "status"}, catalogrow.NewInt(1), catalogrow.NewText("closed"))
	assert.False(t, catalogrow.EqualOn(a, c, []string{"id"}))
}

func TestChangedColumnsExcludesKey(t *testing.T) {
	a := row([]string{"id", "data_type", "not_null"},
		catalogrow.NewInt(1), catalogrow.NewText("int4"), catalogrow.NewBool(true))
	b := row([]string{"id", "data_type", "not_null"},
		catalogrow.NewInt(1), catalogrow.NewText("text"), catalogrow.NewBool(true))

	changed := catalogrow.ChangedColumns(a, b, []string{"id"})
	assert.Equal(t, []string{"data_type"}, changed)
}

func TestWithAppendsNewColumn(t *testing.T) {
	a := row([]string{"id"}, catalogrow.NewInt(1))
	b := a.With("name", catalogrow.NewText("x"))
	assert.Equal(t, []string{"id", "name"}, b.Columns())
	assert.Equal(t, []string{"id"}, a.Columns())
}
