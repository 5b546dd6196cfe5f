// Package engine owns the producer/consumer pipeline described by spec
// sections 4.3-4.5 and 5: N category and row-table producers (C3/C6) feed
// a shared Queue (C4), drained by M consumer workers (C5) into a Sink. This
// file is the master goroutine that wires the three stages together for
// one full comparison run.
package engine

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/oss-tools/pgdbcompare/internal/config"
	"github.com/oss-tools/pgdbcompare/internal/dbconn"
	"github.com/oss-tools/pgdbcompare/internal/events"
	"github.com/oss-tools/pgdbcompare/internal/logging"
	"github.com/oss-tools/pgdbcompare/internal/rowdiscovery"
)

// discoveryPool opens the short-lived pgxpool.Pool rowdiscovery needs to
// enumerate comparable tables, before any producer/consumer is spawned.
// A pool, not a single connection, because rowdiscovery.Discover fans its
// per-table column-type queries out across goroutines, and a bare
// pgx.Conn cannot be shared across concurrent callers.
func discoveryPool(ctx context.Context, target dbconn.Target, maxConns int32) (*pgxpool.Pool, error) {
	connString, err := dbconn.ConnString(target)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = maxConns
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Run executes one full comparison: it discovers comparable tables, spawns
// one CategoryProducer per events.All() entry plus one RowProducer per
// discovered, non-excluded table, spawns consumerCount Consumers draining
// into sink, and waits for everything to finish. A worker's own failure is
// logged and collected but never aborts its siblings (spec section 7) and
// never turns into Run's return value: spec section 6's CLI contract exits
// 0 "on completion (even with reported differences)", non-zero "only if
// the tool itself fails to initialise". Run therefore only returns an error
// for the initialization steps that precede any worker spawn (connecting
// for row discovery, running the discovery query); producer/consumer
// failures are logged and the run still completes with a partial report.
func Run(ctx context.Context, cfg config.Config, sink Sink, consumerCount int, logger *zap.Logger) error {
	runID := uuid.NewString()
	log := logger.With(zap.String("run_id", runID))

	pool, err := discoveryPool(ctx, cfg.Target, int32(rowdiscovery.DefaultConcurrency))
	if err != nil {
		return errors.Wrap(err, "engine: connect target for row discovery")
	}
	tables, err := rowdiscovery.Discover(ctx, pool, rowdiscovery.DefaultConcurrency)
	pool.Close()
	if err != nil {
		return errors.Wrap(err, "engine: discover comparable tables")
	}
	tables = excludeFilter(tables, cfg.IsExcluded)

	categories := events.All()
	producerCount := len(categories) + len(tables)
	if consumerCount <= 0 {
		consumerCount = runtime.NumCPU()
	}

	queue := NewQueue(producerCount * cfg.BlockSize)
	liveness := NewLiveness(producerCount)

	log.Info("starting comparison run",
		logging.Values("fan_out",
			zap.Int("categories", len(categories)),
			zap.Int("tables", len(tables)),
			zap.Int("consumers", consumerCount),
		),
	)

	// Producers run against the undecorated ctx, each independently — one
	// producer's failure marks itself Done (via its own deferred
	// Liveness.Done) and is logged, but must never cancel a sibling still
	// mid-flight (spec section 7: "a worker's failure aborts that worker
	// but not the whole pipeline").
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		firstErr    error
		recordErr   = func(err error) {
			if err == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
		}
	)

	for _, category := range categories {
		category := category
		p := &CategoryProducer{
			Category: category, Source: cfg.Source, Target: cfg.Target,
			BlockSize: cfg.BlockSize, Queue: queue, Liveness: liveness, Logger: log,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			recordErr(reportWorkerErr(log, "category producer", string(category), p.Run(ctx)))
		}()
	}

	for _, table := range tables {
		table := table
		p := &RowProducer{
			Spec: table, Source: cfg.Source, Target: cfg.Target,
			BlockSize: cfg.BlockSize, Queue: queue, Liveness: liveness, Logger: log,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			recordErr(reportWorkerErr(log, "row producer", table.Schema+"."+table.Table, p.Run(ctx)))
		}()
	}

	consumersDone := make(chan error, consumerCount)
	for i := 0; i < consumerCount; i++ {
		c := &Consumer{Queue: queue, Liveness: liveness, Sink: sink, BatchSize: cfg.BlockSize, Logger: log}
		go func(idx int) {
			consumersDone <- reportWorkerErr(log, "consumer", strconv.Itoa(idx), c.Run(ctx))
		}(i)
	}

	wg.Wait()

	var consumerErr error
	for i := 0; i < consumerCount; i++ {
		if err := <-consumersDone; err != nil && consumerErr == nil {
			consumerErr = err
		}
	}

	// Producer/consumer failures are already logged individually by
	// reportWorkerErr as they happen; aggregate context goes out once more
	// here, but neither failure aborts the process's exit code (spec
	// section 6, section 7: the run still completes with a possibly
	// partial report, and the operator discovers missing categories by
	// inspecting the logged tracebacks).
	if firstErr != nil {
		log.Error("one or more producers failed; report is partial", zap.Error(firstErr))
	}
	if consumerErr != nil {
		log.Error("one or more consumers failed; report is partial", zap.Error(consumerErr))
	}

	log.Info("comparison run finished")
	return nil
}

// reportWorkerErr logs a worker's failure (with enough context to find it
// in the report/spreadsheet output later) without altering the error
// itself, since the caller still needs to propagate it to recordErr.
func reportWorkerErr(log *zap.Logger, kind, name string, err error) error {
	if err != nil {
		log.Error("worker failed", zap.String("kind", kind), zap.String("name", name), zap.Error(err))
	}
	return err
}
