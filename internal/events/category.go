// Package events defines the Category and Status enums and the DiffEvent
// type that travels from a producer worker (internal/engine) to a consumer
// worker across the shared queue (spec section 3, "Diff event").
package events

// Category names one of the eighteen PostgreSQL object classes this engine
// compares. There is exactly one spelling per category, enforced by using
// this type everywhere a category is named — including tables_excludes,
// whose Python ancestor had a second, typo'd spelling ("tables_exludes")
// that this enum makes structurally impossible to reintroduce.
type Category string

const (
	Schemas           Category = "schemas"
	Tables            Category = "tables"
	TablesColumns     Category = "tables_columns"
	TablesPKs         Category = "tables_pks"
	TablesFKs         Category = "tables_fks"
	TablesUniques     Category = "tables_uniques"
	TablesChecks      Category = "tables_checks"
	TablesExcludes    Category = "tables_excludes"
	TablesRules       Category = "tables_rules"
	TablesTriggers    Category = "tables_triggers"
	Indexes           Category = "indexes"
	Sequences         Category = "sequences"
	Views             Category = "views"
	MViews            Category = "mviews"
	Functions         Category = "functions"
	TriggerFunctions  Category = "trigger_functions"
	Procedures        Category = "procedures"
	TablesData        Category = "tables_data"
)

// All lists every structural category in the fixed order catalogsql queries
// them in; tables_data is excluded because its worker count depends on
// runtime table discovery (internal/rowdiscovery) rather than a static list.
func All() []Category {
	return []Category{
		Schemas, Tables, TablesColumns, TablesPKs, TablesFKs, TablesUniques,
		TablesChecks, TablesExcludes, TablesRules, TablesTriggers, Indexes,
		Sequences, Views, MViews, Functions, TriggerFunctions, Procedures,
	}
}

// DDLOnly reports whether a category's only content field is a full DDL
// text, so its UPDATED expansion policy is a single event carrying the
// replacement DDL (spec section 4.3) rather than one event per differing
// field. For most such categories that DDL is DROP-then-ADD; views,
// functions, trigger functions and procedures emit only their
// CREATE OR REPLACE text (see selfReplacing in internal/engine/rules.go).
func (c Category) DDLOnly() bool {
	switch c {
	case Indexes, MViews, Views, Functions, TriggerFunctions, Procedures,
		TablesFKs, TablesPKs, TablesUniques, TablesChecks, TablesExcludes,
		TablesRules:
		return true
	default:
		return false
	}
}
