// Package metrics exposes Prometheus collectors for queries, reloads and
// HTTP traffic, registered on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "war_record"

// Reload outcomes.
const (
	ReloadSuccess = "success"
	ReloadFailure = "failure"
)

// Metrics holds the service collectors. The zero value is not usable; a nil
// *Metrics is a no-op so packages can run without instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	queries         *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	snapshotRecords prometheus.Gauge
	reloads         *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec

	queryWindow *Window
	startTime   time.Time
	reloadOK    atomic.Uint64
	reloadFail  atomic.Uint64
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		queries: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Engine evaluations by kind.",
		}, []string{"kind"}),
		queryDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Engine evaluation latency by kind.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind"}),
		snapshotRecords: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Records in the snapshot currently served.",
		}),
		reloads: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Source reloads by outcome.",
		}, []string{"outcome"}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		queryWindow: NewWindow(10000),
		startTime:   time.Now(),
	}
}

// ObserveQuery records one engine evaluation.
func (m *Metrics) ObserveQuery(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(kind).Inc()
	m.queryDuration.WithLabelValues(kind).Observe(d.Seconds())
	m.queryWindow.Record(d)
}

// SetSnapshotRecords sets the size of the served snapshot.
func (m *Metrics) SetSnapshotRecords(n int) {
	if m == nil {
		return
	}
	m.snapshotRecords.Set(float64(n))
}

// ObserveReload counts a reload with outcome ReloadSuccess or ReloadFailure.
func (m *Metrics) ObserveReload(outcome string) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues(outcome).Inc()
	if outcome == ReloadSuccess {
		m.reloadOK.Add(1)
	} else {
		m.reloadFail.Add(1)
	}
}

// ObserveHTTP counts a served request.
func (m *Metrics) ObserveHTTP(route string, code int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Summary is the in-process view served by the stats endpoint.
type Summary struct {
	Uptime         string       `json:"uptime"`
	QueryLatency   LatencyStats `json:"query_latency"`
	Reloads        uint64       `json:"reloads"`
	ReloadFailures uint64       `json:"reload_failures"`
}

// Summary returns the current in-process statistics.
func (m *Metrics) Summary() Summary {
	if m == nil {
		return Summary{}
	}
	return Summary{
		Uptime:         time.Since(m.startTime).Round(time.Second).String(),
		QueryLatency:   m.queryWindow.Stats(),
		Reloads:        m.reloadOK.Load(),
		ReloadFailures: m.reloadFail.Load(),
	}
}
