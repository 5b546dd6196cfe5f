// Package config holds the validated CLI configuration for a single
// comparison run: both database connections, the output sink target, block
// size, and the row-data exclude list (spec section 6, "CLI
// (report-database variant)"). It is deliberately decoupled from pflag so
// cmd/pgdbcompare/main.go can unit test flag-to-config wiring without
// invoking the process-level flag package.
package config

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/oss-tools/pgdbcompare/internal/dbconn"
)

// ExcludedTable is one schema-qualified table name from -e/--exclude-tables.
type ExcludedTable struct {
	Schema string
	Table  string
}

// Config is a fully parsed and validated run configuration.
type Config struct {
	BlockSize int
	Source    dbconn.Target
	Target    dbconn.Target

	// Exactly one of OutputDatabase or OutputFile is set, selecting the
	// report sink (spec section 5: Postgres report DB vs. spreadsheet).
	OutputDatabase dbconn.Target
	OutputFile     string

	ExcludeTables []ExcludedTable
	Debug         bool
}

// Options is the raw, unvalidated input gathered from CLI flags.
type Options struct {
	BlockSize        int
	SourceConnection string
	TargetConnection string
	OutputConnection string
	OutputFile       string
	ExcludeTables    []string
	Debug            bool
}

// Build validates opts and resolves connection strings into a Config.
func Build(opts Options) (Config, error) {
	if opts.BlockSize < 1 {
		return Config{}, errors.Errorf("config: block size must be a positive integer, got %d", opts.BlockSize)
	}

	source, err := dbconn.Parse(opts.SourceConnection)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: source connection")
	}
	target, err := dbconn.Parse(opts.TargetConnection)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: target connection")
	}

	cfg := Config{
		BlockSize: opts.BlockSize,
		Source:    source,
		Target:    target,
		Debug:     opts.Debug,
	}

	switch {
	case opts.OutputFile != "":
		if !strings.HasSuffix(strings.ToLower(opts.OutputFile), ".xlsx") {
			return Config{}, errors.Errorf("config: output file %q must end in .xlsx", opts.OutputFile)
		}
		cfg.OutputFile = opts.OutputFile
	case opts.OutputConnection != "":
		out, err := dbconn.Parse(opts.OutputConnection)
		if err != nil {
			return Config{}, errors.Wrap(err, "config: output connection")
		}
		cfg.OutputDatabase = out
	default:
		return Config{}, errors.New("config: exactly one of --output-database-connection or --output-file is required")
	}

	excludes, err := parseExcludeTables(opts.ExcludeTables)
	if err != nil {
		return Config{}, err
	}
	cfg.ExcludeTables = excludes

	return cfg, nil
}

func parseExcludeTables(raw []string) ([]ExcludedTable, error) {
	excludes := make([]ExcludedTable, 0, len(raw))
	for _, entry := range raw {
		schema, table, ok := strings.Cut(entry, ".")
		if !ok || schema == "" || table == "" {
			return nil, errors.Errorf("config: exclude-tables entry %q must be schema.table", entry)
		}
		excludes = append(excludes, ExcludedTable{Schema: schema, Table: table})
	}
	return excludes, nil
}

// IsExcluded reports whether schema.table appears in the exclude list
// (row-data comparison only — spec section 4.4: "structure comparisons
// still run" for excluded tables).
func (c Config) IsExcluded(schema, table string) bool {
	for _, e := range c.ExcludeTables {
		if e.Schema == schema && e.Table == table {
			return true
		}
	}
	return false
}
