package events

// Status is the tagged-variant transition the sorted-merge differ (C2)
// emits for a single key: {Inserted | Deleted | Updated | Equal}, per the
// "callback-per-event transition" design note in spec section 9. Equal
// never leaves the differ as a DiffEvent — it is folded away before
// reaching the producer's queue push — but it is still a first-class
// member of the variant so callers can pattern-match exhaustively.
type Status string

const (
	Inserted Status = "INSERTED"
	Updated  Status = "UPDATED"
	Deleted  Status = "DELETED"
	Equal    Status = "EQUAL"
)
