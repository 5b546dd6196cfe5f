package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oss-tools/pgdbcompare/internal/events"
)

func TestQueuePushThenTryPopRoundTrips(t *testing.T) {
	q := NewQueue(4)
	ev := events.New(events.Schemas, events.Inserted, events.Identity{SchemaName: "s1"}, nil, `CREATE SCHEMA "s1";`)
	q.Push(ev)

	got, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, ev, got)
}

func TestQueueTryPopOnEmptyQueueReturnsFalse(t *testing.T) {
	q := NewQueue(4)
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestQueueEmptyReflectsBufferedCount(t *testing.T) {
	q := NewQueue(4)
	assert.True(t, q.Empty())

	q.Push(events.New(events.Schemas, events.Inserted, events.Identity{}, nil, ""))
	assert.False(t, q.Empty())

	_, _ = q.TryPop()
	assert.True(t, q.Empty())
}

func TestLivenessAnyAliveTracksDoneCalls(t *testing.T) {
	l := NewLiveness(2)
	assert.True(t, l.AnyAlive())

	l.Done()
	assert.True(t, l.AnyAlive())

	l.Done()
	assert.False(t, l.AnyAlive())
}

func TestLivenessDoneBelowZeroIsANoop(t *testing.T) {
	l := NewLiveness(1)
	l.Done()
	l.Done() // extra call must not underflow
	assert.False(t, l.AnyAlive())
}
