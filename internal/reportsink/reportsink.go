// Package reportsink is the Postgres variant of the report output (spec
// section 5's "report-database variant" / section 6): it bootstraps
// database_comparer_report with goose, then implements engine.Sink by
// translating each batch of events into one blockSize-sized
// SELECT output_report_fnc_add(...) script, executed as a single
// autocommitted statement (spec section 6, steps 2-4). Grounded directly on
// the teacher's pkg/fixgres, which drives the same goose.SetBaseFS +
// goose.Up sequence against a database/sql handle opened on the pgx stdlib
// driver.
package reportsink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/oss-tools/pgdbcompare/internal/dbconn"
	"github.com/oss-tools/pgdbcompare/internal/engine"
	"github.com/oss-tools/pgdbcompare/internal/pgerr"
	"github.com/oss-tools/pgdbcompare/internal/reportsink/migrations"
)

// quoteTag dollar-quotes report sink text parameters, distinct from
// internal/rowdml's tag so a statement that happens to embed one sink's
// generated SQL inside the other's literal (the sql column holds the
// remediation statement itself) can never prematurely close the outer
// quote.
const quoteTag = "report_sink"

// Bootstrap runs every migration in internal/reportsink/migrations against
// target, creating database_comparer_report if absent, then truncates
// output_report so each run starts from an empty report table (spec
// section 6: "Table ... truncated at startup").
func Bootstrap(ctx context.Context, target dbconn.Target) error {
	connString, err := dbconn.ConnString(target)
	if err != nil {
		return errors.Wrap(err, "reportsink: bootstrap connection string")
	}

	db, err := sql.Open("pgx", connString)
	if err != nil {
		return errors.Wrap(err, "reportsink: open migration handle")
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "reportsink: set goose dialect")
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "reportsink: run migrations")
	}

	if _, err := db.ExecContext(ctx, `TRUNCATE TABLE database_comparer_report.output_report RESTART IDENTITY`); err != nil {
		return errors.Wrap(err, "reportsink: truncate output_report")
	}
	return nil
}

// Sink implements engine.Sink against a single live connection to the
// report database. It is not safe for concurrent use by more than one
// consumer at a time; the pipeline opens one Sink per consumer worker.
type Sink struct {
	conn *pgx.Conn
}

// New opens a Sink connection to target. Callers must call Bootstrap once
// (not per-Sink) before the first New, since migrations assume a single
// writer during startup.
func New(ctx context.Context, target dbconn.Target) (*Sink, error) {
	cfg, err := dbconn.ConnConfig(target)
	if err != nil {
		return nil, errors.Wrap(err, "reportsink: connection config")
	}
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "reportsink: connect")
	}
	return &Sink{conn: conn}, nil
}

// WriteBatch builds one script of blockSize output_report_fnc_add(...)
// calls, joined by ";", and executes it as a single statement (spec section
// 6 step 3). Text arguments are dollar-quoted literals rather than bind
// parameters, matching pgx's simple-query requirement that a multi-statement
// body carry no parameters.
func (s *Sink) WriteBatch(ctx context.Context, records []engine.DiffEventRecord) error {
	if len(records) == 0 {
		return nil
	}

	script := buildScript(records)
	if _, err := s.conn.Exec(ctx, script); err != nil {
		return &pgerr.ReportSinkFailure{Cause: err}
	}
	return nil
}

// buildScript renders records as a single ";"-joined batch of
// output_report_fnc_add calls (spec section 6 step 3). Split out from
// WriteBatch so the generated text can be unit tested without a live
// connection.
func buildScript(records []engine.DiffEventRecord) string {
	calls := make([]string, len(records))
	for i, r := range records {
		calls[i] = fmt.Sprintf(
			"SELECT database_comparer_report.output_report_fnc_add(%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)",
			quote(r.Category), quote(r.SchemaName), quote(r.TableName), quote(r.ColumnName),
			quote(r.ConstraintName), quote(r.TriggerName), quote(r.IndexName), quote(r.SequenceName),
			quote(r.ViewName), quote(r.MViewName), quote(r.FunctionID), quote(r.Status), quote(r.SQL),
		)
	}
	return strings.Join(calls, ";\n") + ";"
}

// Close releases the sink's connection.
func (s *Sink) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

// quote renders v as a dollar-quoted ::text literal, or the bare NULL
// token for an empty string — the report function's identity parameters
// are "unset" (NULL), not empty strings, for any column that does not
// apply to a category (spec section 3: "Unused identity columns are
// unset").
func quote(v string) string {
	if v == "" {
		return "NULL"
	}
	return fmt.Sprintf("$%s$%s$%s$::text", quoteTag, v, quoteTag)
}
