package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oss-tools/pgdbcompare/internal/events"
)

// Consumer is one C5 worker: it drains the shared Queue, batches events,
// and flushes each batch to a Sink. There are M consumers per run, M being
// the number of logical CPUs (spec section 5), all reading from the same
// Queue concurrently — batching is purely a per-consumer local buffer, not
// coordinated across consumers.
type Consumer struct {
	Queue     *Queue
	Liveness  *Liveness
	Sink      Sink
	BatchSize int
	Logger    *zap.Logger

	// idlePoll bounds how long Run blocks between empty-queue checks while
	// some producer is still alive, avoiding a busy-spin while waiting for
	// more events. Defaults to 10ms if zero.
	idlePoll time.Duration
}

// Run drains the Queue until every producer is done (Liveness.AnyAlive
// reports false) and the queue itself is empty, flushing whenever a batch
// fills or the worker is about to terminate with a partial batch (spec
// section 5's consumer termination predicate: "no producer remains alive
// and the queue is empty").
func (c *Consumer) Run(ctx context.Context) error {
	poll := c.idlePoll
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}

	batch := make([]DiffEventRecord, 0, c.batchSize())
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.Sink.WriteBatch(ctx, batch); err != nil {
			return err
		}
		c.Logger.Debug("consumer flushed batch", zap.Int("count", len(batch)))
		batch = batch[:0]
		return nil
	}

	for {
		ev, ok := c.Queue.TryPop()
		if ok {
			batch = append(batch, toRecord(ev))
			if len(batch) >= c.batchSize() {
				if err := flush(); err != nil {
					return err
				}
			}
			continue
		}

		// Queue is momentarily empty. If no producer can still push, this
		// is the end of the stream; otherwise wait and recheck.
		if !c.Liveness.AnyAlive() && c.Queue.Empty() {
			return flush()
		}

		select {
		case <-ctx.Done():
			_ = flush()
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}

func (c *Consumer) batchSize() int {
	if c.BatchSize <= 0 {
		return 100
	}
	return c.BatchSize
}

func toRecord(ev events.DiffEvent) DiffEventRecord {
	return DiffEventRecord{
		Category:       string(ev.Category),
		Status:         string(ev.Status),
		SchemaName:     ev.Identity.SchemaName,
		TableName:      ev.Identity.TableName,
		ColumnName:     ev.Identity.ColumnName,
		ConstraintName: ev.Identity.ConstraintName,
		TriggerName:    ev.Identity.TriggerName,
		IndexName:      ev.Identity.IndexName,
		SequenceName:   ev.Identity.SequenceName,
		ViewName:       ev.Identity.ViewName,
		MViewName:      ev.Identity.MViewName,
		FunctionID:     ev.Identity.FunctionID,
		ChangedColumns: ev.ChangedColumns,
		SQL:            ev.SQL,
	}
}
