package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
)

// PrometheusCollector implements the MetricsCollector interface using Prometheus
type PrometheusCollector struct {
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewPrometheusCollector creates a new Prometheus metrics collector
func NewPrometheusCollector() interfaces.MetricsCollector {
	collector := &PrometheusCollector{
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}

	// Initialize common metrics
	collector.initializeMetrics()

	return collector
}

func (p *PrometheusCollector) initializeMetrics() {
	// HTTP request metrics
	p.counters["http_requests_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sz_submissions_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	p.histograms["http_request_duration_seconds"] = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sz_submissions_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// GitHub API metrics
	p.counters["github_requests_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sz_submissions_github_requests_total",
			Help: "Total number of GitHub API requests",
		},
		[]string{"service", "operation", "status"},
	)

	p.histograms["github_request_duration_seconds"] = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sz_submissions_github_request_duration_seconds",
			Help:    "GitHub API request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
		[]string{"service", "operation"},
	)

	// Device-flow provider metrics
	p.counters["deviceauth_requests_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sz_submissions_deviceauth_requests_total",
			Help: "Total number of device authorization requests",
		},
		[]string{"service", "operation", "status"},
	)

	p.histograms["deviceauth_request_duration_seconds"] = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sz_submissions_deviceauth_request_duration_seconds",
			Help:    "Device authorization request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service", "operation"},
	)

	// Business metrics
	p.counters["submissions_published_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sz_submissions_published_total",
			Help: "Total number of submission publish attempts",
		},
		[]string{"status"},
	)

	p.histograms["submission_publish_duration_seconds"] = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sz_submissions_publish_duration_seconds",
			Help:    "Submission publish duration in seconds",
			Buckets: []float64{1.0, 5.0, 10.0, 30.0, 60.0, 120.0},
		},
		[]string{},
	)

	p.counters["submission_listings_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sz_submissions_listings_total",
			Help: "Total number of submission listing requests",
		},
		[]string{"status"},
	)

	p.histograms["submission_listing_duration_seconds"] = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sz_submissions_listing_duration_seconds",
			Help:    "Submission listing duration in seconds",
			Buckets: []float64{0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
		[]string{},
	)

	p.counters["mark_ready_total"] = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sz_submissions_mark_ready_total",
			Help: "Total number of draft conversion attempts",
		},
		[]string{"status"},
	)

	// Circuit breaker metrics
	p.gauges["circuit_breaker_state"] = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sz_submissions_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service", "name"},
	)
}

// IncrementCounter increments a counter metric
func (p *PrometheusCollector) IncrementCounter(name string, labels map[string]string) {
	counter, exists := p.counters[name]
	if !exists {
		return
	}

	counter.With(labels).Inc()
}

// RecordDuration records a duration in a histogram
func (p *PrometheusCollector) RecordDuration(name string, duration float64, labels map[string]string) {
	histogram, exists := p.histograms[name]
	if !exists {
		return
	}

	histogram.With(labels).Observe(duration)
}

// SetGauge sets a gauge value
func (p *PrometheusCollector) SetGauge(name string, value float64, labels map[string]string) {
	gauge, exists := p.gauges[name]
	if !exists {
		return
	}

	gauge.With(labels).Set(value)
}
