package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service. A nil
// *Metrics is valid and records nothing, which keeps unit tests off the
// global registry.
type Metrics struct {
	ActiveCaptureSessions prometheus.Gauge
	CaptureEvents         *prometheus.CounterVec
	StoreWrites           *prometheus.CounterVec
	ScribeRequests        *prometheus.CounterVec
	ScribeLatency         prometheus.Histogram
	EventClients          prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveCaptureSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_capture_sessions",
			Help:      "Number of active memory-capture sessions.",
		}),
		CaptureEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_events_total",
			Help:      "Capture flow events by type.",
		}, []string{"event"}),
		StoreWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Persistence writes by collection and outcome.",
		}, []string{"collection", "outcome"}),
		ScribeRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scribe_requests_total",
			Help:      "Text-generation requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		ScribeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scribe_latency_ms",
			Help:      "Latency of text-generation calls in milliseconds.",
			Buckets:   []float64{100, 300, 700, 1500, 3000, 6000, 12000, 30000},
		}),
		EventClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_clients",
			Help:      "Connected change-feed websocket clients.",
		}),
	}
}

func (m *Metrics) SetActiveCaptureSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveCaptureSessions.Set(float64(n))
}

func (m *Metrics) ObserveCaptureEvent(event string) {
	if m == nil {
		return
	}
	m.CaptureEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveStoreWrite(collection, outcome string) {
	if m == nil {
		return
	}
	m.StoreWrites.WithLabelValues(collection, outcome).Inc()
}

func (m *Metrics) ObserveScribeRequest(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScribeRequests.WithLabelValues(operation, outcome).Inc()
	m.ScribeLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) SetEventClients(n int) {
	if m == nil {
		return
	}
	m.EventClients.Set(float64(n))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
