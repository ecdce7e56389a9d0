// Package scheduler implements the single-timer tick scheduler used by the
// sample producer. It guarantees at most one pending callback invocation at
// a time and that CancelAndWait does not return until any callback already
// in progress has finished running.
package scheduler

import "time"

type scheduleReq struct {
	after time.Duration
	fn    func()
}

// Scheduler runs a sequence of one-shot, self-rescheduling callbacks. A
// single goroutine owns the timer and serializes Schedule/CancelAndWait/
// Close requests through one select loop, but a fired callback runs on its
// own goroutine rather than on the loop goroutine: the callback (the
// producer's tick) ends by calling Schedule again to arm the next period,
// and that call must reach the very same loop — running it on the loop
// goroutine would deadlock the loop sending to itself. CancelAndWait still
// waits for any such in-flight callback to finish before returning, by
// tracking its completion channel rather than by blocking the loop on it.
type Scheduler struct {
	reqCh    chan scheduleReq
	cancelCh chan chan struct{}
	stopCh   chan chan struct{}
}

// New starts the scheduler's background goroutine.
func New() *Scheduler {
	s := &Scheduler{
		reqCh:    make(chan scheduleReq),
		cancelCh: make(chan chan struct{}),
		stopCh:   make(chan chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Scheduler) loop() {
	var timer *time.Timer
	var timerCh <-chan time.Time
	var pending scheduleReq
	var running chan struct{} // non-nil while a callback goroutine is in flight

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerCh = nil
		}
	}

	// waitRunning arranges for done to close once any in-flight callback
	// finishes (or immediately, if none is running), without blocking the
	// loop itself: it hands the wait off to its own goroutine so the loop
	// stays free to service the reqCh send the in-flight callback's own
	// reschedule depends on.
	waitRunning := func(done chan struct{}) {
		if running == nil {
			close(done)
			return
		}
		r := running
		running = nil
		go func() {
			<-r
			close(done)
		}()
	}

	for {
		select {
		case req := <-s.reqCh:
			stopTimer()
			pending = req
			timer = time.NewTimer(req.after)
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			timer = nil
			fn := pending.fn
			done := make(chan struct{})
			running = done
			go func() {
				fn()
				close(done)
			}()

		case done := <-s.cancelCh:
			stopTimer()
			waitRunning(done)

		case done := <-s.stopCh:
			stopTimer()
			// Unlike CancelAndWait, Close must not return the loop to the
			// caller until it stops reading reqCh: an in-flight callback
			// may still be about to send its own reschedule there, and
			// once this goroutine returns nothing will ever receive it.
			// So drain inline instead of handing the wait to waitRunning.
			for running != nil {
				select {
				case <-s.reqCh:
					// Trailing reschedule from the callback that's
					// finishing up; discarded, the scheduler is closing.
				case <-running:
					running = nil
				}
			}
			close(done)
			return
		}
	}
}

// Schedule arranges for fn to run once after d, replacing any previously
// scheduled, not-yet-fired callback.
func (s *Scheduler) Schedule(d time.Duration, fn func()) {
	s.reqCh <- scheduleReq{after: d, fn: fn}
}

// CancelAndWait cancels any pending, not-yet-fired callback and blocks
// until that cancellation (or the completion of an in-flight callback that
// raced with it) has been fully processed by the loop. After it returns, no
// further callback will fire until Schedule is called again.
func (s *Scheduler) CancelAndWait() {
	done := make(chan struct{})
	s.cancelCh <- done
	<-done
}

// Close stops the scheduler's goroutine. It does not run a pending,
// not-yet-fired callback, but it does wait for any already in-flight
// callback (and its trailing reschedule attempt, which is discarded) to
// finish before returning, so no caller is ever left blocked sending to a
// scheduler that has already shut down.
func (s *Scheduler) Close() {
	done := make(chan struct{})
	s.stopCh <- done
	<-done
}
