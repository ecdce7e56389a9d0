package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleFires(t *testing.T) {
	s := New()
	defer s.Close()

	fired := make(chan struct{})
	s.Schedule(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}
}

func TestScheduleReplacesPending(t *testing.T) {
	s := New()
	defer s.Close()

	var fireCount atomic.Int32
	s.Schedule(5*time.Second, func() { fireCount.Add(1) })
	s.Schedule(10*time.Millisecond, func() { fireCount.Add(1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fireCount.Load())
}

func TestCancelAndWaitPreventsFire(t *testing.T) {
	s := New()
	defer s.Close()

	var fired atomic.Bool
	s.Schedule(20*time.Millisecond, func() { fired.Store(true) })
	s.CancelAndWait()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestCancelAndWaitBlocksUntilInFlightCallbackCompletes(t *testing.T) {
	s := New()
	defer s.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	s.Schedule(5*time.Millisecond, func() {
		close(started)
		<-release
		finished.Store(true)
	})

	<-started
	done := make(chan struct{})
	go func() {
		s.CancelAndWait()
		close(done)
	}()

	// CancelAndWait must not return while the callback is still blocked.
	select {
	case <-done:
		t.Fatal("CancelAndWait returned before in-flight callback finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	<-done
	require.True(t, finished.Load())
}

func TestCallbackReschedulingItselfDoesNotDeadlock(t *testing.T) {
	s := New()
	defer s.Close()

	var fireCount atomic.Int32
	var self func()
	self = func() {
		if fireCount.Add(1) >= 5 {
			return
		}
		s.Schedule(2*time.Millisecond, self)
	}
	s.Schedule(2*time.Millisecond, self)

	require.Eventually(t, func() bool {
		return fireCount.Load() >= 5
	}, time.Second, 2*time.Millisecond, "self-rescheduling callback should fire repeatedly without deadlocking")
}

func TestCloseWaitsOutInFlightCallbackAndItsReschedule(t *testing.T) {
	s := New()

	started := make(chan struct{})
	release := make(chan struct{})
	var rescheduled atomic.Bool

	s.Schedule(2*time.Millisecond, func() {
		close(started)
		<-release
		rescheduled.Store(true)
		// Trailing reschedule attempt, as the producer's tick performs;
		// Close must still return even though nothing will ever run this.
		s.Schedule(time.Hour, func() {})
	})

	<-started
	closeDone := make(chan struct{})
	go func() {
		s.Close()
		close(closeDone)
	}()

	select {
	case <-closeDone:
		t.Fatal("Close returned before in-flight callback finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)

	select {
	case <-closeDone:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after in-flight callback's trailing reschedule")
	}
	assert.True(t, rescheduled.Load())
}

func TestRescheduleAfterCancel(t *testing.T) {
	s := New()
	defer s.Close()

	s.Schedule(5*time.Second, func() {})
	s.CancelAndWait()

	fired := make(chan struct{})
	s.Schedule(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire after reschedule")
	}
}
