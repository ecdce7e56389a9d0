// Package simtemp implements a virtual temperature sensor device: a
// periodic sample producer backed by a bounded record queue, an
// edge-triggered alert latch, a mutex-guarded configuration store, and a
// reader-facing record stream — plus the lifecycle controller that wires
// bring-up and tear-down of all of the above.
package simtemp

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/PyCharmGuy123/simtemp/internal/attrs"
	"github.com/PyCharmGuy123/simtemp/internal/binding"
	"github.com/PyCharmGuy123/simtemp/internal/clock"
	"github.com/PyCharmGuy123/simtemp/internal/config"
	"github.com/PyCharmGuy123/simtemp/internal/errkind"
	"github.com/PyCharmGuy123/simtemp/internal/logging"
	"github.com/PyCharmGuy123/simtemp/internal/producer"
	"github.com/PyCharmGuy123/simtemp/internal/queue"
	"github.com/PyCharmGuy123/simtemp/internal/scheduler"
	"github.com/PyCharmGuy123/simtemp/internal/stream"
	"github.com/PyCharmGuy123/simtemp/internal/telemetry"
)

// Params configures bring-up. Zero values fall back to spec defaults.
type Params struct {
	SamplingMs  uint32 // 0 ⇒ DefaultSamplingMs
	ThresholdMC int32
	Mode        string // "" ⇒ "normal"
}

// Options carries optional collaborators. A nil field uses the default
// in-process implementation.
type Options struct {
	Context  context.Context
	Clock    clock.Clock
	Binding  binding.Lookup
	Observer telemetry.Observer
	Attrs    attrs.Registry
}

// Device is the lifecycle controller (LC): it owns the record queue, the
// alert latch (embedded in the queue), the configuration store, the
// sample producer, and the stream surface endpoint, and pins itself for
// the duration of every open handle.
type Device struct {
	q       *queue.Queue
	store   *config.Store
	sched   *scheduler.Scheduler
	prod    *producer.Producer
	strm    *stream.Stream
	attrs   attrs.Registry
	metrics *Metrics

	pins     atomic.Int64
	stopping atomic.Bool
}

// Open performs bring-up: initialize the configuration store and counters
// and apply params, consult the binding-property collaborator for
// bring-up overrides, allocate the record queue (with its alert latch)
// and the stream endpoint, register the control attributes, initialize
// producer scheduling state, and schedule the first tick. Any failure
// unwinds every prior step.
func Open(ctx context.Context, params Params, opts *Options) (dev *Device, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts == nil {
		opts = &Options{}
	}

	store := config.New()
	if params.SamplingMs != 0 {
		if err := store.SetSamplingMs(params.SamplingMs); err != nil {
			return nil, wrapError("Open", errkind.InvalidArgument, err)
		}
	}
	if params.ThresholdMC != 0 {
		store.SetThresholdMC(params.ThresholdMC)
	}
	if params.Mode != "" {
		if err := store.SetMode(params.Mode); err != nil {
			return nil, wrapError("Open", errkind.InvalidArgument, err)
		}
	}

	lookup := opts.Binding
	if lookup == nil {
		lookup = binding.Map{}
	}
	if v, ok := lookup.Int("sampling-ms"); ok && params.SamplingMs == 0 {
		if err := store.SetSamplingMs(uint32(v)); err != nil {
			return nil, wrapError("Open", errkind.InvalidArgument, err)
		}
	}
	if v, ok := lookup.Int("threshold-mC"); ok && params.ThresholdMC == 0 {
		store.SetThresholdMC(int32(v))
	}

	q := queue.New()

	registry := opts.Attrs
	if registry == nil {
		registry = attrs.NewMapRegistry()
	}

	strm := stream.New(q)

	d := &Device{
		q:       q,
		store:   store,
		strm:    strm,
		attrs:   registry,
		metrics: NewMetrics(),
	}

	if err := d.registerAttrs(); err != nil {
		return nil, wrapError("Open", errkind.InvalidArgument, err)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.Monotonic{}
	}
	observ := opts.Observer
	if observ == nil {
		observ = NewMetricsObserver(d.metrics)
	}

	d.sched = scheduler.New()
	d.prod = producer.New(q, store, clk, d.sched, strm.Wake, observ)

	logging.Default().Infof("simtemp device bring-up complete, sampling_ms=%d", store.SamplingMs())

	d.prod.Start()
	return d, nil
}

func (d *Device) registerAttrs() error {
	specs := []attrs.Attribute{
		{
			Name: "sampling_ms",
			Show: func() (string, error) { return fmt.Sprintf("%d\n", d.store.SamplingMs()), nil },
			Store: func(v string) error {
				n, perr := parseUint32(v)
				if perr != nil {
					return wrapError("sampling_ms", errkind.InvalidArgument, perr)
				}
				if err := d.store.SetSamplingMs(n); err != nil {
					return wrapError("sampling_ms", errkind.InvalidArgument, err)
				}
				d.prod.Reschedule()
				return nil
			},
		},
		{
			Name: "threshold_mC",
			Show: func() (string, error) { return fmt.Sprintf("%d\n", d.store.ThresholdMC()), nil },
			Store: func(v string) error {
				n, perr := parseInt32(v)
				if perr != nil {
					return wrapError("threshold_mC", errkind.InvalidArgument, perr)
				}
				d.store.SetThresholdMC(n)
				return nil
			},
		},
		{
			Name: "mode",
			Show: func() (string, error) { return d.store.ModeValue().String() + "\n", nil },
			Store: func(v string) error {
				if err := d.store.SetMode(v); err != nil {
					return wrapError("mode", errkind.InvalidArgument, err)
				}
				return nil
			},
		},
		{
			Name: "debug",
			Show: func() (string, error) {
				if d.store.Debug() {
					return "1\n", nil
				}
				return "0\n", nil
			},
			Store: func(v string) error {
				b, err := config.ParseDebug(v)
				if err != nil {
					return wrapError("debug", errkind.InvalidArgument, err)
				}
				d.store.SetDebug(b)
				return nil
			},
		},
		{
			Name: "stats",
			Show: func() (string, error) { return d.store.Counters.Stats(), nil },
		},
	}
	for i, a := range specs {
		if err := d.attrs.Register(a); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = d.attrs.Unregister(specs[j].Name)
			}
			return err
		}
	}
	return nil
}

// Attrs returns the device's control attribute registry.
func (d *Device) Attrs() attrs.Registry { return d.attrs }

// StreamName returns the stable name the record stream registers under.
func (d *Device) StreamName() string { return StreamName }

// OpenStream pins the device and returns a reader handle, failing with
// IoFatal if the device is stopping.
func (d *Device) OpenStream(nonBlocking bool) (*stream.Handle, error) {
	if d.stopping.Load() {
		return nil, newError("OpenStream", errkind.IoFatal, "device is tearing down")
	}
	h, err := d.strm.Open(nonBlocking)
	if err != nil {
		return nil, translateStreamErr("OpenStream", err)
	}
	d.pins.Add(1)
	return h, nil
}

// CloseStream unpins the device after a reader handle is done with it.
func (d *Device) CloseStream(h *stream.Handle) error {
	err := h.Close()
	d.pins.Add(-1)
	return err
}

// MetricsSnapshot returns a point-in-time snapshot of device metrics.
func (d *Device) MetricsSnapshot() MetricsSnapshot {
	return d.metrics.Snapshot()
}

// Close performs tear-down in the exact reverse order of bring-up: set
// stopping, synchronously cancel the producer (waiting for any in-flight
// tick), unregister control attributes, unregister the stream endpoint,
// and wake all waiters. The queue is not released explicitly; it is
// reclaimed once nothing references it.
func (d *Device) Close(ctx context.Context) error {
	d.stopping.Store(true)
	d.prod.Stop()
	d.sched.Close()

	for _, name := range d.attrs.Names() {
		_ = d.attrs.Unregister(name)
	}

	d.strm.Stop() // unregisters the endpoint's availability and wakes waiters

	d.metrics.Stop()
	return nil
}

func translateStreamErr(op string, err error) *Error {
	if serr, ok := err.(*stream.Error); ok {
		return wrapError(op, serr.Kind, serr)
	}
	return wrapError(op, errkind.Fault, err)
}

// Read consumes exactly one record via h, translating the stream
// surface's error taxonomy into *simtemp.Error.
func (d *Device) Read(ctx context.Context, h *stream.Handle, p []byte) (int, error) {
	n, err := h.Read(ctx, p)
	if err != nil {
		if err == ctx.Err() {
			return n, err
		}
		return n, translateStreamErr("Read", err)
	}
	return n, nil
}

// Poll returns the stream's current readiness mask.
func (d *Device) Poll(h *stream.Handle) stream.Mask { return h.Poll() }

func parseUint32(s string) (uint32, error) {
	var n uint32
	_, err := fmt.Sscanf(trimNewline(s), "%d", &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func parseInt32(s string) (int32, error) {
	var n int32
	_, err := fmt.Sscanf(trimNewline(s), "%d", &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
