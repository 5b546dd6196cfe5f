package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oss-tools/pgdbcompare/internal/events"
)

func TestNewDefensivelyCopiesChangedColumns(t *testing.T) {
	shared := []string{"data_type"}
	e := events.New(events.TablesColumns, events.Updated, events.Identity{SchemaName: "public"}, shared, "ALTER TABLE ...")

	shared[0] = "mutated"
	assert.Equal(t, "data_type", e.ChangedColumns[0])
}

func TestAllExcludesTablesData(t *testing.T) {
	for _, c := range events.All() {
		assert.NotEqual(t, events.TablesData, c)
	}
	assert.Len(t, events.All(), 17)
}

func TestDDLOnlyClassification(t *testing.T) {
	assert.True(t, events.Indexes.DDLOnly())
	assert.True(t, events.MViews.DDLOnly())
	assert.False(t, events.TablesColumns.DDLOnly())
	assert.False(t, events.Sequences.DDLOnly())
	assert.False(t, events.TablesTriggers.DDLOnly())
}

func TestCategorySpellingIsSingleSource(t *testing.T) {
	assert.Equal(t, events.Category("tables_excludes"), events.TablesExcludes)
}
