// Package prom implements the observability hooks with Prometheus
// collectors.
//
//	m := prom.New(nil, "")
//	observability.SetAllocatorHooks(m)
//	observability.SetFeedHooks(m)
//	observability.SetCacheHooks(m)
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/hemicycle/pkg/observability"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "hemicycle"

// Metrics implements every hook interface of the observability package.
type Metrics struct {
	allocations      *prometheus.CounterVec
	allocateDuration prometheus.Histogram

	updates        *prometheus.CounterVec
	updateDuration prometheus.Histogram
	rejected       *prometheus.CounterVec
	retractions    prometheus.Counter
	reporting      prometheus.Gauge
	seats          prometheus.Gauge

	cacheOps *prometheus.CounterVec
}

var (
	_ observability.AllocatorHooks = (*Metrics)(nil)
	_ observability.FeedHooks      = (*Metrics)(nil)
	_ observability.CacheHooks     = (*Metrics)(nil)
)

// New creates and registers the collectors. A nil reg uses
// prometheus.DefaultRegisterer; an empty namespace uses [DefaultNamespace].
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "allocator",
			Name:      "runs_total",
			Help:      "Seat allocations by outcome (ok, error).",
		}, []string{"outcome"}),
		allocateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "allocator",
			Name:      "duration_seconds",
			Help:      "Time spent allocating seats.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "updates_total",
			Help:      "Applied result updates by source and resulting state.",
		}, []string{"source", "state"}),
		updateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "update_duration_seconds",
			Help:      "Time from receiving an update to publishing the new frame.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "rejected_total",
			Help:      "Updates that could not be applied, by source and error code.",
		}, []string{"source", "code"}),
		retractions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "retractions_total",
			Help:      "Elected calls that were later withdrawn or changed.",
		}),
		reporting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seats_reporting",
			Help:      "Seats whose race has a result.",
		}),
		seats: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seats_total",
			Help:      "Seats in the chart.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by key type and result (hit, miss, set).",
		}, []string{"key_type", "result"}),
	}

	reg.MustRegister(
		m.allocations, m.allocateDuration,
		m.updates, m.updateDuration, m.rejected, m.retractions, m.reporting, m.seats,
		m.cacheOps,
	)
	return m
}

func (m *Metrics) OnAllocateStart(context.Context, int, int) {}

func (m *Metrics) OnAllocateComplete(_ context.Context, seats int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.allocations.WithLabelValues(outcome).Inc()
	m.allocateDuration.Observe(d.Seconds())
	if err == nil {
		m.seats.Set(float64(seats))
	}
}

func (m *Metrics) OnUpdate(_ context.Context, source, state string, reporting, seats int, d time.Duration) {
	m.updates.WithLabelValues(source, state).Inc()
	m.updateDuration.Observe(d.Seconds())
	m.reporting.Set(float64(reporting))
	m.seats.Set(float64(seats))
}

func (m *Metrics) OnRejected(_ context.Context, source, code string) {
	m.rejected.WithLabelValues(source, code).Inc()
}

func (m *Metrics) OnRetraction(context.Context, string) { m.retractions.Inc() }

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
}

// Register installs m as the allocator, feed and cache hooks.
func (m *Metrics) Register() {
	observability.SetAllocatorHooks(m)
	observability.SetFeedHooks(m)
	observability.SetCacheHooks(m)
}
