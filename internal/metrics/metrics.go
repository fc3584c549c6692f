// Package metrics provides Prometheus metrics for the dashboard pipeline and HTTP layer.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all Prometheus metrics exported by the dashboard.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec   // Requests by route, method, status
	RequestDuration *prometheus.HistogramVec // Latency by route and method

	// Dataset metrics
	DatasetLoadsTotal   *prometheus.CounterVec // Loads by outcome: success, not_found, format_error, error
	DatasetLoadDuration prometheus.Histogram
	DatasetRows         prometheus.Gauge       // Rows in the most recently loaded dataset
	CacheLookupsTotal   *prometheus.CounterVec // Cache lookups by result: hit, miss

	// View metrics
	ViewRendersTotal *prometheus.CounterVec // Page renders by view and outcome

	registry *prometheus.Registry
}

// New creates the dashboard metrics and registers them with registry
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register dashboard metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	m.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"route", "method"},
	)

	m.DatasetLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_dataset_loads_total",
			Help: "Total number of dataset loads by outcome",
		},
		[]string{"outcome"},
	)

	m.DatasetLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_dataset_load_duration_seconds",
			Help:    "Time taken to read and parse the trip dataset",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	m.DatasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_dataset_rows",
			Help: "Number of trip rows in the most recently loaded dataset",
		},
	)

	m.CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_dataset_cache_lookups_total",
			Help: "Dataset cache lookups by result",
		},
		[]string{"result"},
	)

	m.ViewRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_view_renders_total",
			Help: "Dashboard page renders by view and outcome",
		},
		[]string{"view", "outcome"},
	)
}

// Describe implements prometheus.Collector
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.RequestsTotal.Describe(ch)
	m.RequestDuration.Describe(ch)
	m.DatasetLoadsTotal.Describe(ch)
	m.DatasetLoadDuration.Describe(ch)
	m.DatasetRows.Describe(ch)
	m.CacheLookupsTotal.Describe(ch)
	m.ViewRendersTotal.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.RequestsTotal.Collect(ch)
	m.RequestDuration.Collect(ch)
	m.DatasetLoadsTotal.Collect(ch)
	m.DatasetLoadDuration.Collect(ch)
	m.DatasetRows.Collect(ch)
	m.CacheLookupsTotal.Collect(ch)
	m.ViewRendersTotal.Collect(ch)
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, method, fmt.Sprintf("%d", status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveDatasetLoad records one dataset load
func (m *Metrics) ObserveDatasetLoad(outcome string, rows int, d time.Duration) {
	if m == nil {
		return
	}
	m.DatasetLoadsTotal.WithLabelValues(outcome).Inc()
	m.DatasetLoadDuration.Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		m.DatasetRows.Set(float64(rows))
	}
}

// ObserveCacheLookup records a cache hit or miss
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveViewRender records one page render
func (m *Metrics) ObserveViewRender(view, outcome string) {
	if m == nil {
		return
	}
	m.ViewRendersTotal.WithLabelValues(view, outcome).Inc()
}

// Registry returns the registry the metrics were registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome labels
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeFormatError = "format_error"
	OutcomeDegraded    = "degraded"
	OutcomeError       = "error"
)
