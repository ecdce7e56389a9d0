// Package producer implements the sample producer (SP): the cooperative
// periodic task that synthesizes one record per tick, commits it to the
// record queue, updates the alert latch and counters, and reschedules
// itself.
package producer

import (
	"sync/atomic"
	"time"

	"github.com/PyCharmGuy123/simtemp/internal/clock"
	"github.com/PyCharmGuy123/simtemp/internal/config"
	"github.com/PyCharmGuy123/simtemp/internal/queue"
	"github.com/PyCharmGuy123/simtemp/internal/scheduler"
	"github.com/PyCharmGuy123/simtemp/internal/telemetry"
	"github.com/PyCharmGuy123/simtemp/internal/wire"
)

// WakeFunc notifies any readers blocked waiting for data or priority
// readiness. It must not block or panic.
type WakeFunc func()

// Producer owns the ramp-counter and drives ticks against a Queue, a
// Store, and a Clock.
type Producer struct {
	q      *queue.Queue
	store  *config.Store
	clk    clock.Clock
	sched  *scheduler.Scheduler
	wake   WakeFunc
	observ telemetry.Observer

	stopping    atomic.Bool
	rampCounter int32 // producer-private, per spec design notes
}

// New constructs a Producer. It does not schedule the first tick; call
// Start for that. A nil observer is replaced with telemetry.NoOp{}.
func New(q *queue.Queue, store *config.Store, clk clock.Clock, sched *scheduler.Scheduler, wake WakeFunc, observ telemetry.Observer) *Producer {
	if observ == nil {
		observ = telemetry.NoOp{}
	}
	return &Producer{
		q:      q,
		store:  store,
		clk:    clk,
		sched:  sched,
		wake:   wake,
		observ: observ,
	}
}

// Start schedules the first tick, sampling_ms milliseconds from now.
func (p *Producer) Start() {
	p.scheduleNext(p.store.SamplingMs())
}

// Stop sets the one-way stopping flag and synchronously cancels any
// pending or in-flight tick, waiting for the latter to finish.
func (p *Producer) Stop() {
	p.stopping.Store(true)
	p.sched.CancelAndWait()
}

func (p *Producer) scheduleNext(samplingMs uint32) {
	p.sched.Schedule(time.Duration(samplingMs)*time.Millisecond, p.tick)
}

// tick implements one invocation of the sample producer, per spec §4.2.
func (p *Producer) tick() {
	if p.stopping.Load() {
		return
	}

	start := time.Now()
	nowNS := p.clk.NowNS()

	snap := p.store.Snapshot()
	tempMC := synthesize(snap.Mode, p.rampCounter)
	p.rampCounter++

	flags := wire.FlagNewSample
	isThreshold := tempMC >= snap.ThresholdMC
	if isThreshold {
		flags |= wire.FlagThreshold
	}

	rec := wire.Record{TimestampNS: nowNS, TempMC: tempMC, Flags: flags}

	evicted, armed := p.q.Commit(rec, isThreshold)
	if evicted {
		p.store.Counters.IncDrops()
	}
	if armed {
		p.store.Counters.IncAlerts()
	}
	p.store.Counters.IncUpdates()
	p.observ.ObserveTick(uint64(time.Since(start).Nanoseconds()), armed, evicted)

	p.wake()

	if !p.stopping.Load() {
		p.scheduleNext(p.store.SamplingMs())
	}
}

// synthesize computes temp_mC for the given mode and pre-increment ramp
// counter value, per spec §4.2 step 4. All three formulas fit signed
// 32-bit by construction.
func synthesize(mode config.Mode, ramp int32) int32 {
	switch mode {
	case config.ModeRamp:
		return 25000 + ((ramp * 200) % 40000)
	case config.ModeNoisy:
		return 30000 + ((ramp*37)%4001) - 2000
	default: // config.ModeNormal
		return 30000 + (ramp % 20000)
	}
}

// Reschedule cancels any pending tick and, if not stopping, schedules the
// next one using the current sampling period. It implements the
// cancellation/rescheduling race guard from spec §9: stopping is checked
// after cancel, before reschedule.
func (p *Producer) Reschedule() {
	p.sched.CancelAndWait()
	if p.stopping.Load() {
		return
	}
	p.scheduleNext(p.store.SamplingMs())
}
