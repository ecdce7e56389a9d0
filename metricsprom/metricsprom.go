// Package metricsprom adapts the device's tick telemetry onto a
// Prometheus registry, so a deployment can scrape sample cadence,
// alert, and eviction counters alongside a tick-latency histogram
// instead of (or in addition to) polling the in-process stats
// attribute.
package metricsprom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PyCharmGuy123/simtemp/internal/telemetry"
)

// Observer implements telemetry.Observer by feeding every tick into a
// dedicated Prometheus registry. Unlike a package-level global
// registry, each Observer owns its own registry so that multiple
// devices (e.g. in tests) can coexist without "duplicate metrics
// collector registration" panics.
type Observer struct {
	registry *prometheus.Registry

	updatesTotal prometheus.Counter
	alertsTotal  prometheus.Counter
	dropsTotal   prometheus.Counter
	tickLatency  prometheus.Histogram
}

var _ telemetry.Observer = (*Observer)(nil)

// New builds an Observer and registers its collectors against reg. A
// nil reg gets a fresh, private *prometheus.Registry.
func New(reg *prometheus.Registry) *Observer {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	o := &Observer{
		registry: reg,
		updatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simtemp_updates_total",
			Help: "Total number of samples committed to the record queue.",
		}),
		alertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simtemp_alerts_total",
			Help: "Total number of clear-to-armed alert latch transitions.",
		}),
		dropsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simtemp_drops_total",
			Help: "Total number of oldest-record evictions due to a full queue.",
		}),
		tickLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simtemp_tick_latency_seconds",
			Help:    "Wall-clock duration of one producer tick (synthesize, commit, wake).",
			Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2},
		}),
	}
	reg.MustRegister(o.updatesTotal, o.alertsTotal, o.dropsTotal, o.tickLatency)
	return o
}

// ObserveTick implements telemetry.Observer.
func (o *Observer) ObserveTick(latencyNs uint64, armed, evicted bool) {
	o.updatesTotal.Inc()
	o.tickLatency.Observe(float64(latencyNs) / 1e9)
	if armed {
		o.alertsTotal.Inc()
	}
	if evicted {
		o.dropsTotal.Inc()
	}
}

// Handler returns an http.Handler serving this Observer's registry in
// the Prometheus text exposition format, suitable for mounting at
// "/metrics".
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, e.g. to merge it into a
// larger process-wide registry.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}
