package engine

import "context"

// Sink is anything a consumer worker can flush a batch of DiffEvents to
// (spec section 5: either the Postgres report database or an xlsx
// workbook). internal/reportsink and internal/xlsxsink each implement it.
type Sink interface {
	// WriteBatch persists one batch of events. Implementations own their
	// own serialization/formatting; the consumer only guarantees ordering
	// within a single call, not across calls from different workers.
	WriteBatch(ctx context.Context, events []DiffEventRecord) error

	// Close flushes and releases any held resources (a connection, an open
	// workbook file). Called once per run, after engine.Run has returned.
	Close(ctx context.Context) error
}

// DiffEventRecord is the flattened, sink-agnostic shape a consumer hands to
// a Sink: the same information as events.DiffEvent with its category and
// status already resolved to strings, so neither sink needs to import
// internal/events just to read a Category or Status constant's string form.
type DiffEventRecord struct {
	Category       string
	Status         string
	SchemaName     string
	TableName      string
	ColumnName     string
	ConstraintName string
	TriggerName    string
	IndexName      string
	SequenceName   string
	ViewName       string
	MViewName      string
	FunctionID     string
	ChangedColumns []string
	SQL            string
}
