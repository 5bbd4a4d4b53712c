// Package metrics exposes Prometheus counters and histograms for fetches,
// cache lookups, analysis runs and dashboard requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors on a private registry so that several
// instances can coexist in one process (tests, multiple servers).
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec   // labels: source, result
	FetchDuration *prometheus.HistogramVec // labels: source
	CacheLookups  *prometheus.CounterVec   // labels: result=hit|miss
	RunsTotal     *prometheus.CounterVec   // labels: kind, result
	RunDuration   *prometheus.HistogramVec // labels: kind
	HTTPRequests  *prometheus.CounterVec   // labels: route, code
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockanalyzer_fetch_total",
			Help: "Upstream price history fetches by source and result",
		}, []string{"source", "result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockanalyzer_fetch_duration_seconds",
			Help:    "Upstream fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockanalyzer_cache_lookups_total",
			Help: "Price history cache lookups by result",
		}, []string{"result"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockanalyzer_runs_total",
			Help: "Analysis runs by kind (analysis|comparison) and result",
		}, []string{"kind", "result"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockanalyzer_run_duration_seconds",
			Help:    "End-to-end analysis run latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockanalyzer_http_requests_total",
			Help: "Dashboard requests by route and status code",
		}, []string{"route", "code"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.FetchTotal,
		m.FetchDuration,
		m.CacheLookups,
		m.RunsTotal,
		m.RunDuration,
		m.HTTPRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one upstream fetch.
func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(source, result(err)).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if hit {
		label = "hit"
	}
	m.CacheLookups.WithLabelValues(label).Inc()
}

// ObserveRun records one analysis or comparison run.
func (m *Metrics) ObserveRun(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(kind, result(err)).Inc()
	m.RunDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveHTTP records one dashboard request.
func (m *Metrics) ObserveHTTP(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
