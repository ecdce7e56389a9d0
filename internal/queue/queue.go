// Package queue implements the bounded record queue (RQ) and coordinates it
// with the alert latch (AL) under one short, non-blocking critical section,
// as required by the producer/reader concurrency discipline: a record's
// commit and the latch's arm-on-threshold must be atomic with respect to a
// concurrent dequeue-and-clear.
package queue

import (
	"sync"

	"github.com/PyCharmGuy123/simtemp/internal/constants"
	"github.com/PyCharmGuy123/simtemp/internal/latch"
	"github.com/PyCharmGuy123/simtemp/internal/wire"
)

// Capacity is the fixed record queue capacity.
const Capacity = constants.QueueCapacity

// Queue is a fixed-capacity FIFO ring of wire.Record, guarded by a single
// mutex that also protects the embedded alert latch. All operations are
// O(1) and hold the lock only across a bounds check, a record copy, and (on
// Commit/Pop) a latch transition.
type Queue struct {
	mu    sync.Mutex
	buf   [Capacity]wire.Record
	head  int // index of the oldest record
	count int
	al    latch.Latch
}

// New returns an empty queue with the latch clear.
func New() *Queue {
	return &Queue{}
}

func (q *Queue) full() bool  { return q.count == Capacity }
func (q *Queue) empty() bool { return q.count == 0 }

// pushLocked appends rec, assuming the caller holds q.mu and the queue is
// not full.
func (q *Queue) pushLocked(rec wire.Record) {
	idx := (q.head + q.count) % Capacity
	q.buf[idx] = rec
	q.count++
}

// popLocked removes and returns the oldest record, assuming the caller
// holds q.mu and the queue is non-empty.
func (q *Queue) popLocked() wire.Record {
	rec := q.buf[q.head]
	q.head = (q.head + 1) % Capacity
	q.count--
	return rec
}

// TryPush inserts rec unless the queue is full, in which case it reports
// full=true and does not mutate the queue.
func (q *Queue) TryPush(rec wire.Record) (ok, full bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.full() {
		return false, true
	}
	q.pushLocked(rec)
	return true, false
}

// ForcePush evicts the oldest record if the queue is full, then inserts
// rec. It always succeeds provided Capacity > 0. evicted reports whether an
// eviction occurred.
func (q *Queue) ForcePush(rec wire.Record) (ok, evicted bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.full() {
		if Capacity == 0 {
			// Defensive branch: eviction cannot free space. Unreachable with
			// the fixed Capacity constant above, kept to document the
			// contract rather than to guard live code.
			return false, false
		}
		q.popLocked()
		evicted = true
	}
	q.pushLocked(rec)
	return true, evicted
}

// PopOne dequeues the oldest record, clearing the alert latch if that
// record carries the THRESHOLD flag. ok is false iff the queue was empty.
func (q *Queue) PopOne() (rec wire.Record, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.empty() {
		return wire.Record{}, false
	}
	rec = q.popLocked()
	if rec.HasThreshold() {
		q.al.Clear()
	}
	return rec, true
}

// Commit performs the producer's atomic queue+latch update for one tick:
// evict-oldest-if-full (reported as evicted, always counted by the caller
// as a drop), push the new record, then arm the latch if isThreshold and
// the latch was clear (reported as armed, counted by the caller as an
// alert).
func (q *Queue) Commit(rec wire.Record, isThreshold bool) (evicted, armed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.full() {
		q.popLocked()
		evicted = true
	}
	q.pushLocked(rec)

	if isThreshold {
		armed = q.al.ArmIfClear()
	}
	return evicted, armed
}

// IsEmpty reports whether the queue currently holds no records.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.empty()
}

// IsArmed reports the current alert latch state.
func (q *Queue) IsArmed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.al.IsArmed()
}

// Size returns the current number of queued records. Intended for tests and
// diagnostics.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
