// Package xlsxsink is the spreadsheet variant of the report output (spec
// section 5's "-f/--output-file" CLI variant, expanded by SPEC_FULL's
// SUPPLEMENTED FEATURES #1): one worksheet per category, created lazily on
// its first row, with a header shaped
// [schema_name, ...identity columns, key, status, diff, sql_to_fix]
// exactly as original_source/compare_databases.py's create_sheet builds it.
package xlsxsink

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/tealeg/xlsx"

	"github.com/oss-tools/pgdbcompare/internal/engine"
)

// identityColumns names the extra header columns (beyond schema_name) each
// category's worksheet carries, mirroring the per-category dict keys the
// original assembled before writing a spreadsheet row (e.g. tables_fks
// carries fk_name, tables_columns carries column_name).
var identityColumns = map[string][]string{
	"schemas":           {},
	"tables":            {"table_name"},
	"tables_columns":    {"table_name", "column_name"},
	"tables_pks":        {"table_name", "constraint_name"},
	"tables_fks":        {"table_name", "constraint_name"},
	"tables_uniques":    {"table_name", "constraint_name"},
	"tables_checks":     {"table_name", "constraint_name"},
	"tables_excludes":   {"table_name", "constraint_name"},
	"tables_rules":      {"table_name", "constraint_name"},
	"tables_triggers":   {"table_name", "trigger_name"},
	"indexes":           {"index_name"},
	"sequences":         {"sequence_name"},
	"views":             {"view_name"},
	"mviews":            {"mview_name"},
	"functions":         {"function_id"},
	"trigger_functions": {"function_id"},
	"procedures":        {"function_id"},
	"tables_data":       {"table_name"},
}

// identityValue returns r's value for one identity column name, matching
// the column names identityColumns declares.
func identityValue(r engine.DiffEventRecord, column string) string {
	switch column {
	case "table_name":
		return r.TableName
	case "column_name":
		return r.ColumnName
	case "constraint_name":
		return r.ConstraintName
	case "trigger_name":
		return r.TriggerName
	case "index_name":
		return r.IndexName
	case "sequence_name":
		return r.SequenceName
	case "view_name":
		return r.ViewName
	case "mview_name":
		return r.MViewName
	case "function_id":
		return r.FunctionID
	default:
		return ""
	}
}

// Sink implements engine.Sink by accumulating rows into an in-memory
// workbook and writing it to disk once, on Close. Not safe for concurrent
// use by more than one consumer; the pipeline serializes all xlsx writes
// through a single Sink when this output mode is selected (see buildSink
// in cmd/pgdbcompare for the single-consumer-for-xlsx rule).
type Sink struct {
	path   string
	file   *xlsx.File
	sheets map[string]*xlsx.Sheet
}

// New creates a Sink that will save to path on Close.
func New(path string) *Sink {
	return &Sink{path: path, file: xlsx.NewFile(), sheets: map[string]*xlsx.Sheet{}}
}

func (s *Sink) sheetFor(category string) (*xlsx.Sheet, error) {
	if sheet, ok := s.sheets[category]; ok {
		return sheet, nil
	}

	sheet, err := s.file.AddSheet(category)
	if err != nil {
		return nil, errors.Wrapf(err, "xlsxsink: add worksheet %q", category)
	}

	header := sheet.AddRow()
	header.AddCell().Value = "schema_name"
	for _, col := range identityColumns[category] {
		header.AddCell().Value = col
	}
	header.AddCell().Value = "key"
	header.AddCell().Value = "status"
	header.AddCell().Value = "diff"
	header.AddCell().Value = "sql_to_fix"

	s.sheets[category] = sheet
	return sheet, nil
}

// WriteBatch appends one worksheet row per record, lazily creating that
// category's worksheet (and its header) on the first record for it.
func (s *Sink) WriteBatch(ctx context.Context, records []engine.DiffEventRecord) error {
	for _, r := range records {
		sheet, err := s.sheetFor(r.Category)
		if err != nil {
			return err
		}

		row := sheet.AddRow()
		row.AddCell().Value = r.SchemaName
		var keyParts []string
		for _, col := range identityColumns[r.Category] {
			v := identityValue(r, col)
			row.AddCell().Value = v
			if v != "" {
				keyParts = append(keyParts, v)
			}
		}
		row.AddCell().Value = strings.Join(keyParts, "/")
		row.AddCell().Value = r.Status
		row.AddCell().Value = strings.Join(r.ChangedColumns, ",")
		row.AddCell().Value = r.SQL
	}
	return nil
}

// Close writes the accumulated workbook to s.path.
func (s *Sink) Close(ctx context.Context) error {
	if err := s.file.Save(s.path); err != nil {
		return errors.Wrapf(err, "xlsxsink: save %q", s.path)
	}
	return nil
}
