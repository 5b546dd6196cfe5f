// Package sqllint validates that a generated remediation statement (spec
// section 4.1's per-category add/drop DDL, section 4.4's per-row DML) is at
// least syntactically well-formed PostgreSQL before a producer queues it.
// This is a supplemented safety net, not part of the original's behavior:
// the catalog queries and rowdml already build correct SQL from catalog
// metadata, but a real-parser syntax check catches a malformed identifier
// or a quoting bug long before the statement reaches the report sink or,
// worse, an operator's terminal. Grounded on
// other_examples/546cccf0_nnaka2992-pg-lock-check's use of the same
// library to parse statements into an AST before inspecting them — this
// package only needs Parse's error return, not the tree itself.
package sqllint

import (
	"github.com/pganalyze/pg_query_go/v6"
	"github.com/pkg/errors"
)

// Validate parses sql with the real PostgreSQL grammar and returns a
// descriptive error if it does not parse. Multiple semicolon-separated
// statements (as dropThenAdd's DROP-then-CREATE pairs and the consumer's
// batched scripts both produce) are accepted: pg_query.Parse handles a
// multi-statement body natively.
func Validate(sql string) error {
	if _, err := pg_query.Parse(sql); err != nil {
		return errors.Wrap(err, "sqllint: generated SQL failed to parse")
	}
	return nil
}
