// Package stream implements the reader-facing stream surface (SS):
// blocking/non-blocking read of exactly one record, readiness polling, and
// the alert-clear-on-consume rule.
package stream

import (
	"context"
	"sync/atomic"

	"github.com/PyCharmGuy123/simtemp/internal/errkind"
	"github.com/PyCharmGuy123/simtemp/internal/queue"
	"github.com/PyCharmGuy123/simtemp/internal/wire"
)

// Mask is a readiness bitmask returned by Poll.
type Mask uint32

const (
	// Readable is set iff the record queue is non-empty.
	Readable Mask = 0x1
	// Priority is set iff the alert latch is armed.
	Priority Mask = 0x2
)

// Error reports a stream-surface failure with its taxonomy kind.
type Error struct {
	Kind errkind.Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(k errkind.Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

// Stream is the shared, stoppable record stream endpoint. It coordinates
// any number of reader Handles against one Queue.
type Stream struct {
	q *queue.Queue

	stopping atomic.Bool
	// readyCh is edge-coalesced: the producer sends a non-blocking
	// signal after every commit (and Stop sends one); waiters always
	// re-check the predicate after waking, per the shmring
	// readiness-channel pattern.
	readyCh chan struct{}
}

// New returns a Stream bound to q.
func New(q *queue.Queue) *Stream {
	return &Stream{
		q:       q,
		readyCh: make(chan struct{}, 1),
	}
}

// Wake notifies any reader blocked in Read that new data (or a new alert)
// may be available. Safe to call from the producer's tick context; never
// blocks.
func (s *Stream) Wake() {
	select {
	case s.readyCh <- struct{}{}:
	default:
	}
}

// Stop sets the one-way stopping flag and wakes a blocked reader; each
// reader that observes the flag passes the wake-up on before returning
// IoFatal, so every blocked reader is released.
func (s *Stream) Stop() {
	s.stopping.Store(true)
	s.Wake()
}

// Poll returns the current readiness mask.
func (s *Stream) Poll() Mask {
	var m Mask
	if !s.q.IsEmpty() {
		m |= Readable
	}
	if s.q.IsArmed() {
		m |= Priority
	}
	return m
}

// Handle is one reader's open reference to a Stream. It pins the Stream
// for its lifetime; opening after Stop fails with IoFatal.
type Handle struct {
	s          *Stream
	nonBlocking bool
	closed     atomic.Bool
}

// Open returns a new Handle, or an IoFatal Error if the stream is
// stopping.
func (s *Stream) Open(nonBlocking bool) (*Handle, error) {
	if s.stopping.Load() {
		return nil, newErr(errkind.IoFatal, "simtemp: stream is stopping")
	}
	return &Handle{s: s, nonBlocking: nonBlocking}, nil
}

// Close releases the handle's pin. It never fails.
func (h *Handle) Close() error {
	h.closed.Store(true)
	return nil
}

// Poll reports readiness for this handle's underlying stream.
func (h *Handle) Poll() Mask { return h.s.Poll() }

// Read consumes exactly one record into p, which must be at least
// wire.Size bytes, returning wire.Size on success. It blocks until data is
// available unless the handle is non-blocking, in which case it fails
// immediately with Again. ctx cancellation unblocks a waiting read
// cleanly, consuming no record.
func (h *Handle) Read(ctx context.Context, p []byte) (int, error) {
	if len(p) < wire.Size {
		return 0, newErr(errkind.InvalidArgument, "simtemp: read buffer smaller than record size")
	}

	for {
		rec, ok := h.s.q.PopOne()
		if ok {
			n := rec.Encode(p)
			return n, nil
		}

		if h.nonBlocking {
			return 0, newErr(errkind.Again, "simtemp: no data available")
		}

		if h.s.stopping.Load() {
			// Pass the wake-up on to the next blocked reader, if any.
			h.s.Wake()
			return 0, newErr(errkind.IoFatal, "simtemp: device is tearing down")
		}

		select {
		case <-h.s.readyCh:
			// Re-check predicate; wakeups are edge-coalesced and may be
			// spurious with respect to this particular reader.
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
