package rowkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oss-tools/pgdbcompare/internal/catalogrow"
	"github.com/oss-tools/pgdbcompare/internal/rowkey"
)

func TestCompareOrdersByKeyColumns(t *testing.T) {
	a := catalogrow.NewRow([]string{"id"}, []catalogrow.Value{catalogrow.NewInt(1)})
	b := catalogrow.NewRow([]string{"id"}, []catalogrow.Value{catalogrow.NewInt(2)})
	assert.Equal(t, -1, rowkey.Compare(a, b, []string{"id"}))
	assert.Equal(t, 1, rowkey.Compare(b, a, []string{"id"}))
	assert.Equal(t, 0, rowkey.Compare(a, a, []string{"id"}))
}

func TestCompareFallsThroughMultiColumnKey(t *testing.T) {
	a := catalogrow.NewRow([]string{"schema_name", "table_name"},
		[]catalogrow.Value{catalogrow.NewText("public"), catalogrow.NewText("a_table")})
	b := catalogrow.NewRow([]string{"schema_name", "table_name"},
		[]catalogrow.Value{catalogrow.NewText("public"), catalogrow.NewText("b_table")})
	assert.Equal(t, -1, rowkey.Compare(a, b, []string{"schema_name", "table_name"}))
}

func TestEqualAvoidsUnderscoreCollision(t *testing.T) {
	// "a_b" and "c" joined on "_" collide with "a" and "b_c"; the tuple
	// comparator must not treat these as equal.
	a := catalogrow.NewRow([]string{"k1", "k2"},
		[]catalogrow.Value{catalogrow.NewText("a"), catalogrow.NewText("b_c")})
	b := catalogrow.NewRow([]string{"k1", "k2"},
		[]catalogrow.Value{catalogrow.NewText("a_b"), catalogrow.NewText("c")})

	assert.Equal(t, "a_b_c", catalogrow.KeyString(a, []string{"k1", "k2"}))
	assert.Equal(t, "a_b_c", catalogrow.KeyString(b, []string{"k1", "k2"}))
	assert.False(t, rowkey.Equal(a, b, []string{"k1", "k2"}))
}
