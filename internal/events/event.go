package events

// Identity carries the category-specific identifying fields of a diff
// event. Only the fields relevant to Category are populated; the rest are
// left at their zero value ("") and must be passed through as NULL to the
// report sink (spec section 3, "Report row": "Unused identity columns are
// unset").
type Identity struct {
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
}

// DiffEvent is the unit placed on the shared producer/consumer queue (spec
// section 3, "Diff event" / C4).
type DiffEvent struct {
	Category       Category
	Status         Status
	Identity       Identity
	ChangedColumns []string
	SQL            string
}

// New builds a DiffEvent, defensively copying ChangedColumns so a caller
// that reuses its backing slice across events cannot retroactively mutate an event already pushed onto
// the queue.
func New(category Category, status Status, identity Identity, changedColumns []string, sql string) DiffEvent {
	var cc []string
	if len(changedColumns) > 0 {
		cc = make([]string, len(changedColumns))
		copy(cc, changedColumns)
	}
	return DiffEvent{
		Category:       category,
		Status:         status,
		Identity:       identity,
		ChangedColumns: cc,
		SQL:            sql,
	}
}
