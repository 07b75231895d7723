package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// File operation metrics
	FileOps        *prometheus.CounterVec
	FileOpDuration *prometheus.HistogramVec
	FilesGenerated prometheus.Counter
	ImgTagsCounted prometheus.Counter

	// Rename task metrics
	RenameTasksActive prometheus.Gauge
	RenameTasksTotal  prometheus.Counter
	RenameFailures    prometheus.Counter

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalDuration float64 `json:"total_duration_seconds"`
	ActiveTasks   int64   `json:"active_rename_tasks"`
}

// NewMetrics creates a new metrics collector backed by its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlgateway_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlgateway_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlgateway_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlgateway_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// File operation metrics
		FileOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htmlgateway_file_operations_total",
				Help: "Total number of gateway file operations",
			},
			[]string{"operation", "status"},
		),
		FileOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htmlgateway_file_operation_duration_seconds",
				Help:    "Gateway file operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
		FilesGenerated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "htmlgateway_files_generated_total",
				Help: "Total number of HTML files written by generate operations",
			},
		),
		ImgTagsCounted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "htmlgateway_img_tags_counted_total",
				Help: "Total number of <img> elements found by tag counts",
			},
		),

		// Rename task metrics
		RenameTasksActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "htmlgateway_rename_tasks_active",
				Help: "Number of bulk rename tasks still running",
			},
		),
		RenameTasksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "htmlgateway_rename_tasks_total",
				Help: "Total number of bulk rename tasks started",
			},
		),
		RenameFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "htmlgateway_rename_failures_total",
				Help: "Total number of per-file rename failures inside bulk rename tasks",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "htmlgateway_uptime_seconds",
			Help: "Gateway uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler returns the Prometheus exposition handler for this collector's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordFileOp records one gateway file operation
func (m *Metrics) RecordFileOp(operation, status string, duration time.Duration) {
	m.FileOps.WithLabelValues(operation, status).Inc()
	m.FileOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// AddFilesGenerated adds n to the generated files counter
func (m *Metrics) AddFilesGenerated(n int) {
	m.FilesGenerated.Add(float64(n))
}

// AddImgTags adds n to the counted <img> elements counter
func (m *Metrics) AddImgTags(n int) {
	m.ImgTagsCounted.Add(float64(n))
}

// RenameTaskStarted marks a bulk rename task as running
func (m *Metrics) RenameTaskStarted() {
	m.RenameTasksTotal.Inc()
	m.RenameTasksActive.Inc()
	m.mu.Lock()
	m.snapshot.ActiveTasks++
	m.mu.Unlock()
}

// RenameTaskFinished marks a bulk rename task as done
func (m *Metrics) RenameTaskFinished() {
	m.RenameTasksActive.Dec()
	m.mu.Lock()
	m.snapshot.ActiveTasks--
	m.mu.Unlock()
}

// IncRenameFailures increments the per-file rename failure counter
func (m *Metrics) IncRenameFailures() {
	m.RenameFailures.Inc()
}

// Snapshot returns a copy of the current snapshot
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Uptime returns time since the collector was created
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
