package rowdiscovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitNonEmpty(t *testing.T) {
	assert.Nil(t, splitNonEmpty("", ","))
	assert.Equal(t, []string{"a", "b"}, splitNonEmpty("a,b", ","))
	assert.Equal(t, []string{"only"}, splitNonEmpty("only", ","))
}

func TestLeafTableKeysSQLSelectsLeafTablesOnly(t *testing.T) {
	assert.Contains(t, leafTableKeysSQL, "p.table_name IS NULL")
	assert.Contains(t, leafTableKeysSQL, "relkind IN ('r', 'p')")
	assert.Contains(t, leafTableKeysSQL, "COALESCE(sp.column_names, sc.column_names)")
}

func TestColumnTypesSQLScopedToSingleTable(t *testing.T) {
	assert.Contains(t, columnTypesSQL, "table_schema = $1 AND table_name = $2")
}
