// Package migrations embeds the goose migration set that bootstraps the
// report database's schema (spec section 6: "Schema
// database_comparer_report... Table output_report... Function
// output_report_fnc_add"). Grounded on the teacher's pkg/fixgres, which
// calls goose.SetBaseFS with an embedded migration directory before running
// goose.Up against a freshly booted container.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
