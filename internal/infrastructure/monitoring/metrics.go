package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Present outcomes
const (
	OutcomeWritten     = "written"
	OutcomeDiscarded   = "discarded"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Content source metrics
	ContentCalls    *prometheus.CounterVec
	ContentDuration *prometheus.HistogramVec

	// Sandbox metrics
	Composes          prometheus.Counter
	Presents          *prometheus.CounterVec
	Releases          *prometheus.CounterVec
	FramesLive        prometheus.Gauge
	PreflightFailures prometheus.Counter
	PreflightDuration prometheus.Histogram

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON health endpoint
type Snapshot struct {
	TotalRequests int64 `json:"total_requests"`
	TotalErrors   int64 `json:"total_errors"`
	ContentErrors int64 `json:"content_errors"`
	FramesLive    int64 `json:"frames_live"`
	Uptime        int64 `json:"uptime_seconds"`
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebook_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursebook_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursebook_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		ContentCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebook_content_calls_total",
				Help: "Total number of content source calls",
			},
			[]string{"operation", "status"},
		),
		ContentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursebook_content_duration_seconds",
				Help:    "Content source call duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15},
			},
			[]string{"operation"},
		),

		Composes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coursebook_sandbox_composes_total",
				Help: "Total number of composed simulation documents",
			},
		),
		Presents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebook_sandbox_presents_total",
				Help: "Presented documents by outcome",
			},
			[]string{"slot", "outcome"},
		),
		Releases: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebook_sandbox_releases_total",
				Help: "Released isolation contexts",
			},
			[]string{"slot"},
		),
		FramesLive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "coursebook_sandbox_frames_live",
				Help: "Isolation frames currently holding a document",
			},
		),
		PreflightFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coursebook_sandbox_preflight_content_failures_total",
				Help: "Preflight renders whose content raised an in-document error",
			},
		),
		PreflightDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coursebook_sandbox_preflight_duration_seconds",
				Help:    "Headless preflight render duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "coursebook_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordContentCall records a content source call
func (m *Metrics) RecordContentCall(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.mu.Lock()
		m.snapshot.ContentErrors++
		m.mu.Unlock()
	}
	m.ContentCalls.WithLabelValues(operation, status).Inc()
	m.ContentDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPreflight records a headless render
func (m *Metrics) RecordPreflight(duration time.Duration, contentFailed bool) {
	m.PreflightDuration.Observe(duration.Seconds())
	if contentFailed {
		m.PreflightFailures.Inc()
	}
}

// IncComposes counts a composed document
func (m *Metrics) IncComposes() {
	m.Composes.Inc()
}

// SetFramesLive sets the live frame gauge
func (m *Metrics) SetFramesLive(count int) {
	m.FramesLive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.FramesLive = int64(count)
	m.mu.Unlock()
}

// Presented, Discarded, Released and Unavailable satisfy sandbox.Observer.

func (m *Metrics) Presented(slot string) {
	m.Presents.WithLabelValues(slot, OutcomeWritten).Inc()
}

func (m *Metrics) Discarded(slot string) {
	m.Presents.WithLabelValues(slot, OutcomeDiscarded).Inc()
}

func (m *Metrics) Released(slot string) {
	m.Releases.WithLabelValues(slot).Inc()
}

func (m *Metrics) Unavailable(slot string, _ error) {
	m.Presents.WithLabelValues(slot, OutcomeUnavailable).Inc()
}

// Snapshot returns the current counters
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.Uptime = int64(time.Since(m.startTime).Seconds())
	return s
}
