package engine

import (
	"sync"

	"github.com/oss-tools/pgdbcompare/internal/events"
)

// Queue is the multi-producer/multi-consumer change-event channel spec
// section 3 ("Change Event & Liveness Channel", C4) describes: FIFO per
// producer, cross-producer order unspecified. It is a buffered Go channel,
// bounded by the capacity given to NewQueue (Push blocks while it is
// full), so this
// type is a thin wrapper that exists mainly to pair the channel with the
// Liveness vector consumers need for their termination predicate (spec
// section 9: "a channel plus an atomic counter").
type Queue struct {
	ch chan events.DiffEvent
}

// NewQueue creates a Queue. capacity bounds the channel's internal buffer
// (purely a memory/backpressure knob — spec section 5 notes the queue
// itself is conceptually unbounded); 0 is legal and makes every Push
// rendezvous with a Pop.
func NewQueue(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{ch: make(chan events.DiffEvent, capacity)}
}

// Push enqueues one diff event, blocking only if the buffer is full.
func (q *Queue) Push(e events.DiffEvent) { q.ch <- e }

// TryPop attempts a non-blocking dequeue (spec section 4.5 step 1:
// "Non-blockingly take an event from the queue"). ok is false if the queue
// is currently empty.
func (q *Queue) TryPop() (events.DiffEvent, bool) {
	select {
	case e := <-q.ch:
		return e, true
	default:
		return events.DiffEvent{}, false
	}
}

// Empty reports whether the queue currently holds no events. Like any
// concurrent queue this is a snapshot, not a guarantee — consumers must
// still re-check it inside their termination loop alongside Liveness, per
// spec section 4.5's termination condition.
func (q *Queue) Empty() bool { return len(q.ch) == 0 }

// Liveness is the mutable per-producer alive vector spec section 3
// describes: one cell per producer, written exactly once (true -> false)
// when that producer finishes emitting, read by every consumer. It is
// implemented as an atomic counter of still-alive producers rather than a
// literal []bool array, matching spec section 9's recommended systems-
// language shape ("a channel plus an atomic counter ... the consumer's exit
// predicate is counter == 0 AND channel.empty()") — functionally equivalent
// to the array because no consumer ever needs to know *which* producer
// cell flipped, only how many remain alive.
type Liveness struct {
	mu    sync.Mutex
	alive int
}

// NewLiveness creates a Liveness vector for n producers, all initially
// alive.
func NewLiveness(n int) *Liveness {
	return &Liveness{alive: n}
}

// Done marks one producer as finished. Safe to call from multiple
// goroutines; calling it more than once per producer would under-count and
// is a caller bug, not guarded against here (each producer calls this
// exactly once, on every exit path, per spec section 4.3 step 4).
func (l *Liveness) Done() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.alive > 0 {
		l.alive--
	}
}

// AnyAlive reports whether at least one producer has not yet finished.
func (l *Liveness) AnyAlive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.alive > 0
}
