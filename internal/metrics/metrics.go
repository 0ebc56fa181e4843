package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons for detections that never reach the annotator.
const (
	DropBelowFloor  = "below_floor"
	DropUnmonitored = "unmonitored"
)

// Metrics holds the monitor's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	FramesFetched      prometheus.Counter
	DetectionsAccepted *prometheus.CounterVec
	DetectionsDropped  *prometheus.CounterVec
	LogLinesWritten    prometheus.Counter
	Faults             *prometheus.CounterVec
	CycleDuration      prometheus.Histogram
	Running            prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		FramesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camwatch_frames_fetched_total",
			Help: "Frames fetched and decoded from the camera",
		}),
		DetectionsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "camwatch_detections_accepted_total",
			Help: "Detections annotated and logged, by category",
		}, []string{"category"}),
		DetectionsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "camwatch_detections_dropped_total",
			Help: "Detections discarded before annotation, by reason",
		}, []string{"reason"}),
		LogLinesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camwatch_detection_log_lines_total",
			Help: "Lines appended to the detection log",
		}),
		Faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "camwatch_faults_total",
			Help: "Errors that stopped the monitoring loop, by kind",
		}, []string{"kind"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "camwatch_cycle_duration_seconds",
			Help:    "Duration of a full fetch-detect-display cycle",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "camwatch_running",
			Help: "1 while the monitoring loop is running",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FramesFetched,
		m.DetectionsAccepted,
		m.DetectionsDropped,
		m.LogLinesWritten,
		m.Faults,
		m.CycleDuration,
		m.Running,
	)

	return m
}

func (m *Metrics) FrameFetched() {
	if m != nil {
		m.FramesFetched.Inc()
	}
}

func (m *Metrics) Accepted(category string) {
	if m != nil {
		m.DetectionsAccepted.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) Dropped(reason string) {
	if m != nil {
		m.DetectionsDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) LogLineWritten() {
	if m != nil {
		m.LogLinesWritten.Inc()
	}
}

func (m *Metrics) Fault(kind string) {
	if m != nil {
		m.Faults.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ObserveCycle(d time.Duration) {
	if m != nil {
		m.CycleDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) SetRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.Running.Set(1)
	} else {
		m.Running.Set(0)
	}
}

// Handler returns an HTTP handler serving the registry in Prometheus format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
