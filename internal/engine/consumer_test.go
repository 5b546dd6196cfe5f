package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oss-tools/pgdbcompare/internal/events"
)

type recordingSink struct {
	mu      sync.Mutex
	batches [][]DiffEventRecord
	closed  bool
}

func (s *recordingSink) WriteBatch(ctx context.Context, records []DiffEventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]DiffEventRecord, len(records))
	copy(batch, records)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *recordingSink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) totalRecords() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func TestConsumerFlushesOnBatchFull(t *testing.T) {
	q := NewQueue(10)
	liveness := NewLiveness(1)
	sink := &recordingSink{}
	c := &Consumer{Queue: q, Liveness: liveness, Sink: sink, BatchSize: 2, Logger: zap.NewNop(), idlePoll: time.Millisecond}

	for i := 0; i < 5; i++ {
		q.Push(events.New(events.Schemas, events.Inserted, events.Identity{SchemaName: "s"}, nil, "x"))
	}
	liveness.Done()

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 5, sink.totalRecords())
}

func TestConsumerWaitsForLivenessBeforeTerminating(t *testing.T) {
	q := NewQueue(10)
	liveness := NewLiveness(1)
	sink := &recordingSink{}
	c := &Consumer{Queue: q, Liveness: liveness, Sink: sink, BatchSize: 100, Logger: zap.NewNop(), idlePoll: time.Millisecond}

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("consumer terminated before its producer reported done")
	default:
	}

	q.Push(events.New(events.Tables, events.Inserted, events.Identity{SchemaName: "s", TableName: "t"}, nil, "y"))
	liveness.Done()

	require.NoError(t, <-done)
	assert.Equal(t, 1, sink.totalRecords())
}
