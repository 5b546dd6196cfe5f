// Command pgdbcompare is the CLI entrypoint for the parallel PostgreSQL
// database comparison engine (spec section 6). It parses flags with
// pflag, builds a validated internal/config.Config, bootstraps whichever
// report sink was selected, and runs internal/engine.Run to completion.
// Grounded on the teacher's server/cmd/main.go, generalized from "start an
// HTTP server" to "run one comparison and exit."
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/oss-tools/pgdbcompare/internal/config"
	"github.com/oss-tools/pgdbcompare/internal/engine"
	"github.com/oss-tools/pgdbcompare/internal/logging"
	"github.com/oss-tools/pgdbcompare/internal/reportsink"
	"github.com/oss-tools/pgdbcompare/internal/xlsxsink"
)

func main() {
	opts, debug := parseFlags()

	logger, err := logging.New(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pgdbcompare: build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(opts, logger); err != nil {
		logger.Fatal("pgdbcompare exited", zap.Error(err))
	}
}

func parseFlags() (config.Options, bool) {
	var (
		blockSize     = pflag.IntP("block-size", "b", 1000, "fetch/insert batch size")
		source        = pflag.StringP("source-database-connection", "s", "", "HOST:PORT:DATABASE:USER:PASSWORD")
		target        = pflag.StringP("target-database-connection", "t", "", "HOST:PORT:DATABASE:USER:PASSWORD")
		output        = pflag.StringP("output-database-connection", "o", "", "HOST:PORT:DATABASE:USER:PASSWORD (report database variant)")
		outputFile    = pflag.StringP("output-file", "f", "", "path ending in .xlsx (spreadsheet variant)")
		excludeTables = pflag.StringArrayP("exclude-tables", "e", nil, "schema.table entries to omit from row-data comparison")
		debug         = pflag.Bool("debug", false, "verbose development logging")
	)
	pflag.Parse()

	return config.Options{
		BlockSize:        *blockSize,
		SourceConnection: *source,
		TargetConnection: *target,
		OutputConnection: *output,
		OutputFile:       *outputFile,
		ExcludeTables:    *excludeTables,
		Debug:            *debug,
	}, *debug
}

func run(opts config.Options, logger *zap.Logger) error {
	cfg, err := config.Build(opts)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sink, consumerCount, err := buildSink(ctx, cfg)
	if err != nil {
		return err
	}
	defer sink.Close(ctx) //nolint:errcheck

	return engine.Run(ctx, cfg, sink, consumerCount, logger)
}

// buildSink selects and opens the report sink spec section 5 describes,
// based on which of OutputDatabase/OutputFile config.Build populated. The
// xlsx sink gets exactly one consumer worker, since an in-memory workbook
// is not safe for concurrent writes the way a Postgres connection pool
// would be; the Postgres sink scales consumers to the host's CPU count
// (spec section 5: "M = number of logical CPUs").
func buildSink(ctx context.Context, cfg config.Config) (engine.Sink, int, error) {
	if cfg.OutputFile != "" {
		return xlsxsink.New(cfg.OutputFile), 1, nil
	}

	if err := reportsink.Bootstrap(ctx, cfg.OutputDatabase); err != nil {
		return nil, 0, err
	}
	sink, err := reportsink.New(ctx, cfg.OutputDatabase)
	if err != nil {
		return nil, 0, err
	}
	return sink, 0, nil
}
