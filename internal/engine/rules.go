// Package engine wires the catalog query library (internal/catalogsql), the
// sorted-merge differ (internal/sortedmerge) and the row-data differ
// (internal/rowdiscovery, internal/rowdml) into the producer/consumer
// pipeline spec section 5 describes: C3/C6 producers push events.DiffEvent
// onto a shared Queue (C4), C5 consumers drain it into a Sink.
package engine

import (
	"fmt"

	"github.com/oss-tools/pgdbcompare/internal/catalogrow"
	"github.com/oss-tools/pgdbcompare/internal/events"
)

// UpdateEvent is one ALTER-style statement a category's Update rule
// produces for a single UPDATED transition. A category whose content fields
// are independently alterable (tables_columns, sequences, tables_triggers)
// returns one UpdateEvent per differing field (spec section 4.3); a
// DDL-only category returns exactly one.
type UpdateEvent struct {
	ChangedColumns []string
	SQL            string
}

// DDLFunc renders one side of a category's add/drop statement from a
// catalog row.
type DDLFunc func(row catalogrow.Row) string

// Rule maps one category's catalog row shape to diff events: how to read
// its identity out of a row, how to render the create/drop statements for
// INSERTED/DELETED, and how to expand an UPDATED transition (spec section
// 4.3's "UPDATED-event expansion policy").
type Rule struct {
	Identity func(row catalogrow.Row) events.Identity
	AddDDL   DDLFunc
	DropDDL  DDLFunc
	Update   func(oldRow, newRow catalogrow.Row, identity events.Identity) []UpdateEvent
}

// rules holds one Rule per structural category. tables_data has no entry:
// its identity/DDL shape is generated per-table by internal/rowdml, not by
// a static per-category rule.
var rules = map[events.Category]Rule{}

func register(c events.Category, r Rule) { rules[c] = r }

// For returns the Rule for a structural category.
func For(c events.Category) (Rule, bool) {
	r, ok := rules[c]
	return r, ok
}

func col(row catalogrow.Row, name string) string { return row.MustGet(name).String() }

// noUpdate is the Update rule for categories the original explicitly
// provides no UPDATED callback for (spec section 4.2: "missing callbacks
// mean 'ignore that transition'"). schemas and tables are matched solely by
// name/existence; a changed owner or grant list surfaces only as whatever
// finer-grained category tracks that content (tables_columns, etc.), not as
// a schemas/tables UPDATED event.
func noUpdate(catalogrow.Row, catalogrow.Row, events.Identity) []UpdateEvent { return nil }

// dropThenAdd builds the Update rule shared by every DDL-only category that
// has no "CREATE OR REPLACE" form to lean on (constraints, rules, indexes,
// mviews): the fix is always DROP the old definition, then ADD the new one,
// in that order (spec section 9's tables_triggers design note generalizes
// to every category in this family). It reads both statements off the
// oldRow/newRow pair it is actually handed, never an out-of-scope row
// variable — the bug spec section 9 calls out in the original mviews worker.
func dropThenAdd(addDDL, dropDDL DDLFunc, contentField string) func(catalogrow.Row, catalogrow.Row, events.Identity) []UpdateEvent {
	return func(oldRow, newRow catalogrow.Row, _ events.Identity) []UpdateEvent {
		return []UpdateEvent{{
			ChangedColumns: []string{contentField},
			SQL:            dropDDL(oldRow) + "\n" + addDDL(newRow),
		}}
	}
}

// selfReplacing builds the Update rule for categories whose add-DDL is
// already an idempotent CREATE OR REPLACE statement (views, functions,
// procedures, trigger functions): UPDATE just re-runs the add statement.
func selfReplacing(addDDL DDLFunc, contentField string) func(catalogrow.Row, catalogrow.Row, events.Identity) []UpdateEvent {
	return func(_, newRow catalogrow.Row, _ events.Identity) []UpdateEvent {
		return []UpdateEvent{{
			ChangedColumns: []string{contentField},
			SQL:            addDDL(newRow),
		}}
	}
}

func init() {
	schemaAdd := func(row catalogrow.Row) string { return col(row, "create_schema_ddl") }
	schemaDrop := func(row catalogrow.Row) string { return col(row, "drop_schema_ddl") }
	register(events.Schemas, Rule{
		Identity: func(row catalogrow.Row) events.Identity {
			return events.Identity{SchemaName: col(row, "schema_name")}
		},
		AddDDL:  schemaAdd,
		DropDDL: schemaDrop,
		Update:  noUpdate,
	})

	tableAdd := func(row catalogrow.Row) string { return col(row, "create_table_ddl") }
	tableDrop := func(row catalogrow.Row) string { return col(row, "drop_table_ddl") }
	register(events.Tables, Rule{
		Identity: func(row catalogrow.Row) events.Identity {
			return events.Identity{SchemaName: col(row, "table_schema"), TableName: col(row, "table_name")}
		},
		AddDDL:  tableAdd,
		DropDDL: tableDrop,
		Update:  noUpdate,
	})

	columnAdd := func(row catalogrow.Row) string { return col(row, "add_column_ddl") }
	columnDrop := func(row catalogrow.Row) string { return col(row, "drop_column_ddl") }
	register(events.TablesColumns, Rule{
		Identity: func(row catalogrow.Row) events.Identity {
			return events.Identity{
				SchemaName: col(row, "table_schema"),
				TableName:  col(row, "table_name"),
				ColumnName: col(row, "column_name"),
			}
		},
		AddDDL:  columnAdd,
		DropDDL: columnDrop,
		Update:  updateTablesColumns,
	})

	constraintAdd := func(row catalogrow.Row) string { return col(row, "add_constraint_ddl") }
	constraintDrop := func(row catalogrow.Row) string { return col(row, "drop_constraint_ddl") }
	constraintIdentity := func(row catalogrow.Row) events.Identity {
		return events.Identity{
			SchemaName:     col(row, "namespace"),
			TableName:      col(row, "class_name"),
			ConstraintName: col(row, "constraint_name"),
		}
	}
	for _, c := range []events.Category{
		events.TablesFKs, events.TablesPKs, events.TablesUniques,
		events.TablesChecks, events.TablesExcludes,
	} {
		register(c, Rule{
			Identity: constraintIdentity,
			AddDDL:   constraintAdd,
			DropDDL:  constraintDrop,
			Update:   dropThenAdd(constraintAdd, constraintDrop, "constraint_definition"),
		})
	}

	ruleAdd := func(row catalogrow.Row) string { return col(row, "create_rule_ddl") }
	ruleDrop := func(row catalogrow.Row) string { return col(row, "drop_rule_ddl") }
	// tables_rules has no dedicated identity slot in the report row (spec
	// section 3 lists no rule_name column): the rule name rides in
	// ConstraintName, the closest existing "secondary object name" slot
	// left over from the report schema's fixed column set.
	register(events.TablesRules, Rule{
		Identity: func(row catalogrow.Row) events.Identity {
			return events.Identity{
				SchemaName:     col(row, "schema_name"),
				TableName:      col(row, "table_name"),
				ConstraintName: col(row, "rule_name"),
			}
		},
		AddDDL:  ruleAdd,
		DropDDL: ruleDrop,
		Update:  dropThenAdd(ruleAdd, ruleDrop, "rule_definition"),
	})

	triggerAdd := func(row catalogrow.Row) string { return col(row, "create_trigger_ddl") }
	triggerDrop := func(row catalogrow.Row) string { return col(row, "drop_trigger_ddl") }
	register(events.TablesTriggers, Rule{
		Identity: func(row catalogrow.Row) events.Identity {
			return events.Identity{
				SchemaName:  col(row, "schema_name"),
				TableName:   col(row, "table_name"),
				TriggerName: col(row, "trigger_name"),
			}
		},
		AddDDL:  triggerAdd,
		DropDDL: triggerDrop,
		Update:  updateTablesTriggers,
	})

	indexAdd := func(row catalogrow.Row) string { return col(row, "create_index_ddl") }
	indexDrop := func(row catalogrow.Row) string { return col(row, "drop_index_ddl") }
	register(events.Indexes, Rule{
		Identity: func(row catalogrow.Row) events.Identity {
			return events.Identity{SchemaName: col(row, "index_namespace"), IndexName: col(row, "index_name")}
		},
		AddDDL:  indexAdd,
		DropDDL: indexDrop,
		Update:  dropThenAdd(indexAdd, indexDrop, "create_index_ddl"),
	})

	sequenceAdd := func(row catalogrow.Row) string { return col(row, "create_sequence_ddl") }
	sequenceDrop := func(row catalogrow.Row) string { return col(row, "drop_sequence_ddl") }
	register(events.Sequences, Rule{
		Identity: func(row catalogrow.Row) events.Identity {
			return events.Identity{SchemaName: col(row, "sequence_schema"), SequenceName: col(row, "sequence_name")}
		},
		AddDDL:  sequenceAdd,
		DropDDL: sequenceDrop,
		Update:  updateSequences,
	})

	viewAdd := func(row catalogrow.Row) string { return col(row, "create_view_ddl") }
	viewDrop := func(row catalogrow.Row) string { return col(row, "drop_view_ddl") }
	register(events.Views, Rule{
		Identity: func(row catalogrow.Row) events.Identity {
			return events.Identity{SchemaName: col(row, "view_schema"), ViewName: col(row, "view_name")}
		},
		AddDDL:  viewAdd,
		DropDDL: viewDrop,
		// CREATE OR REPLACE VIEW is self-replacing: no DROP needed on
		// UPDATE (spec section 4.1's views bullet), unlike mviews below.
		Update: selfReplacing(viewAdd, "view_definition"),
	})

	mviewAdd := func(row catalogrow.Row) string { return col(row, "create_mview_ddl") }
	mviewDrop := func(row catalogrow.Row) string { return col(row, "drop_mview_ddl") }
	register(events.MViews, Rule{
		Identity: func(row catalogrow.Row) events.Identity {
			return events.Identity{SchemaName: col(row, "mview_schema"), MViewName: col(row, "mview_name")}
		},
		AddDDL:  mviewAdd,
		DropDDL: mviewDrop,
		Update:  dropThenAdd(mviewAdd, mviewDrop, "mview_definition"),
	})

	routineIdentity := func(row catalogrow.Row) events.Identity {
		return events.Identity{SchemaName: col(row, "schema_name"), FunctionID: col(row, "function_id")}
	}
	routineAdd := func(row catalogrow.Row) string { return col(row, "create_function_ddl") }
	routineDrop := func(row catalogrow.Row) string { return col(row, "drop_function_ddl") }
	for _, c := range []events.Category{events.Functions, events.TriggerFunctions, events.Procedures} {
		register(c, Rule{
			Identity: routineIdentity,
			AddDDL:   routineAdd,
			DropDDL:  routineDrop,
			// pg_get_functiondef already emits CREATE OR REPLACE FUNCTION,
			// so like views this is self-replacing on UPDATE.
			Update: selfReplacing(routineAdd, "function_definition"),
		})
	}
}

func updateTablesColumns(oldRow, newRow catalogrow.Row, identity events.Identity) []UpdateEvent {
	var out []UpdateEvent
	schema, table, column := identity.SchemaName, identity.TableName, identity.ColumnName

	if !catalogrow.Equal(oldRow.MustGet("data_type"), newRow.MustGet("data_type")) {
		out = append(out, UpdateEvent{
			ChangedColumns: []string{"data_type"},
			SQL: fmt.Sprintf("ALTER TABLE %s.%s ALTER COLUMN %s TYPE %s;",
				schema, table, column, col(newRow, "data_type")),
		})
	}
	if !catalogrow.Equal(oldRow.MustGet("not_null"), newRow.MustGet("not_null")) {
		verb := "DROP NOT NULL"
		if newRow.MustGet("not_null").String() == "t" {
			verb = "SET NOT NULL"
		}
		out = append(out, UpdateEvent{
			ChangedColumns: []string{"not_null"},
			SQL:            fmt.Sprintf("ALTER TABLE %s.%s ALTER COLUMN %s %s;", schema, table, column, verb),
		})
	}
	if !catalogrow.Equal(oldRow.MustGet("column_default"), newRow.MustGet("column_default")) {
		def := newRow.MustGet("column_default")
		stmt := fmt.Sprintf("ALTER TABLE %s.%s ALTER COLUMN %s DROP DEFAULT;", schema, table, column)
		if !def.IsNull() {
			stmt = fmt.Sprintf("ALTER TABLE %s.%s ALTER COLUMN %s SET DEFAULT %s;", schema, table, column, def.String())
		}
		out = append(out, UpdateEvent{ChangedColumns: []string{"column_default"}, SQL: stmt})
	}
	return out
}

func updateSequences(oldRow, newRow catalogrow.Row, identity events.Identity) []UpdateEvent {
	schema, name := identity.SchemaName, identity.SequenceName
	prefix := fmt.Sprintf("ALTER SEQUENCE %s.%s", schema, name)

	var out []UpdateEvent
	attr := func(field, clause string) {
		if !catalogrow.Equal(oldRow.MustGet(field), newRow.MustGet(field)) {
			out = append(out, UpdateEvent{
				ChangedColumns: []string{field},
				SQL:            fmt.Sprintf("%s %s;", prefix, clause),
			})
		}
	}

	attr("start_value", "RESTART WITH "+col(newRow, "start_value"))
	attr("minimum_value", "MINVALUE "+col(newRow, "minimum_value"))
	attr("maximum_value", "MAXVALUE "+col(newRow, "maximum_value"))
	attr("increment", "INCREMENT BY "+col(newRow, "increment"))
	if !catalogrow.Equal(oldRow.MustGet("cycle_option"), newRow.MustGet("cycle_option")) {
		clause := "NO CYCLE"
		if col(newRow, "cycle_option") == "YES" {
			clause = "CYCLE"
		}
		out = append(out, UpdateEvent{ChangedColumns: []string{"cycle_option"}, SQL: fmt.Sprintf("%s %s;", prefix, clause)})
	}
	return out
}

func updateTablesTriggers(oldRow, newRow catalogrow.Row, identity events.Identity) []UpdateEvent {
	schema, table, trigger := identity.SchemaName, identity.TableName, identity.TriggerName

	definitionChanged := !catalogrow.Equal(oldRow.MustGet("trigger_definition"), newRow.MustGet("trigger_definition"))
	enabledChanged := !catalogrow.Equal(oldRow.MustGet("trigger_enabled"), newRow.MustGet("trigger_enabled"))

	if definitionChanged {
		// Spec section 9's design-note fix: DROP must come before CREATE,
		// reading both statements off the current row pair (oldRow/newRow),
		// never an out-of-scope row variable.
		stmt := col(oldRow, "drop_trigger_ddl") + "\n" + col(newRow, "create_trigger_ddl")
		if col(newRow, "trigger_enabled") == "D" {
			stmt += fmt.Sprintf("\nALTER TABLE %s.%s DISABLE TRIGGER %s;", schema, table, trigger)
		}
		changed := []string{"trigger_definition"}
		if enabledChanged {
			changed = append(changed, "trigger_enabled")
		}
		return []UpdateEvent{{ChangedColumns: changed, SQL: stmt}}
	}

	if enabledChanged {
		verb := "ENABLE"
		if col(newRow, "trigger_enabled") == "D" {
			verb = "DISABLE"
		}
		return []UpdateEvent{{
			ChangedColumns: []string{"trigger_enabled"},
			SQL:            fmt.Sprintf("ALTER TABLE %s.%s %s TRIGGER %s;", schema, table, verb, trigger),
		}}
	}
	return nil
}
