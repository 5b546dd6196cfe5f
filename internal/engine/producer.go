package engine

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/oss-tools/pgdbcompare/internal/catalogsql"
	"github.com/oss-tools/pgdbcompare/internal/cursor"
	"github.com/oss-tools/pgdbcompare/internal/dbconn"
	"github.com/oss-tools/pgdbcompare/internal/events"
	"github.com/oss-tools/pgdbcompare/internal/sortedmerge"
	"github.com/oss-tools/pgdbcompare/internal/sqllint"
)

// CategoryProducer is one C3 worker: it owns two cursors (source and
// target, both running the same category's catalog query), drives them
// through the sorted-merge differ, and turns every INSERTED/UPDATED/DELETED
// transition into one or more events.DiffEvent pushed onto the shared
// Queue. Schemas/tables_columns/etc. are each one CategoryProducer; the
// master spawns one per structural category (spec section 5: "N = number
// of categories + number of comparable user tables").
type CategoryProducer struct {
	Category  events.Category
	Source    dbconn.Target
	Target    dbconn.Target
	BlockSize int
	Queue     *Queue
	Liveness  *Liveness
	Logger    *zap.Logger
}

// Run executes the producer's full lifecycle (spec section 4.3): connect
// both sides, run the merge, push one event per transition, and on every
// exit path — success or failure — mark itself done in Liveness. The
// returned error is the worker's failure, if any; the caller (the pipeline)
// collects it without aborting siblings, per spec section 7's "a worker's
// failure aborts that worker but not the whole pipeline."
func (p *CategoryProducer) Run(ctx context.Context) (err error) {
	log := p.Logger.With(zap.String("category", string(p.Category)))
	defer p.Liveness.Done()

	query, ok := catalogsql.For(p.Category)
	if !ok {
		return errors.Errorf("engine: no catalog query registered for category %q", p.Category)
	}
	rule, ok := For(p.Category)
	if !ok {
		return errors.Errorf("engine: no diff rule registered for category %q", p.Category)
	}

	sourceCfg, err := dbconn.ConnConfig(p.Source)
	if err != nil {
		return errors.Wrap(err, "engine: source connection config")
	}
	targetCfg, err := dbconn.ConnConfig(p.Target)
	if err != nil {
		return errors.Wrap(err, "engine: target connection config")
	}

	sourceConn, err := pgx.ConnectConfig(ctx, sourceCfg)
	if err != nil {
		return errors.Wrapf(err, "engine: connect source for category %q", p.Category)
	}
	defer sourceConn.Close(ctx)

	targetConn, err := pgx.ConnectConfig(ctx, targetCfg)
	if err != nil {
		return errors.Wrapf(err, "engine: connect target for category %q", p.Category)
	}
	defer targetConn.Close(ctx)

	cursorA := cursor.New(sourceConn, string(p.Category), query.SQL, p.BlockSize)
	cursorB := cursor.New(targetConn, string(p.Category), query.SQL, p.BlockSize)

	count := 0
	handler := func(d sortedmerge.Diff) error {
		for _, ev := range expand(p.Category, rule, d) {
			if lintErr := sqllint.Validate(ev.SQL); lintErr != nil {
				return errors.Wrapf(lintErr, "engine: category %q emitted unparsable SQL", p.Category)
			}
			p.Queue.Push(ev)
			count++
		}
		return nil
	}

	if err := sortedmerge.Run(ctx, cursorA, cursorB, query.KeyColumns, handler); err != nil {
		return errors.Wrapf(err, "engine: diff category %q", p.Category)
	}

	log.Debug("category producer finished", zap.Int("events_emitted", count))
	return nil
}

// expand turns one sortedmerge.Diff into zero or more diff events, applying
// category's Rule for identity extraction and UPDATED expansion (spec
// section 4.3's per-category policy).
func expand(category events.Category, rule Rule, d sortedmerge.Diff) []events.DiffEvent {
	switch d.Status {
	case sortedmerge.StatusInserted:
		identity := rule.Identity(d.Row)
		return []events.DiffEvent{events.New(category, events.Inserted, identity, nil, rule.AddDDL(d.Row))}

	case sortedmerge.StatusDeleted:
		identity := rule.Identity(d.Row)
		return []events.DiffEvent{events.New(category, events.Deleted, identity, nil, rule.DropDDL(d.Row))}

	case sortedmerge.StatusUpdated:
		identity := rule.Identity(d.NewRow)
		updates := rule.Update(d.OldRow, d.NewRow, identity)
		out := make([]events.DiffEvent, 0, len(updates))
		for _, u := range updates {
			out = append(out, events.New(category, events.Updated, identity, u.ChangedColumns, u.SQL))
		}
		return out

	default: // sortedmerge.StatusEqual
		return nil
	}
}
