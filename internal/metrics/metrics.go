package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "morsechat"

// Metrics owns a registry and every collector the service exports.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	translations        *prometheus.CounterVec
	translationDuration *prometheus.HistogramVec

	connectedClients prometheus.Gauge
	activeRooms      prometheus.Gauge
	chatMessages     *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"method", "path"}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "morse",
			Name:      "translations_total",
			Help:      "Total number of translations by direction and outcome.",
		}, []string{"direction", "outcome"}),
		translationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "morse",
			Name:      "translation_duration_seconds",
			Help:      "Duration of translations.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"direction"}),
		connectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "connected_clients",
			Help:      "Current number of connected websocket clients.",
		}),
		activeRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "active_rooms",
			Help:      "Current number of rooms with at least one member.",
		}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total number of chat messages by encoding and outcome.",
		}, []string{"encoding", "outcome"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.translations,
		m.translationDuration,
		m.connectedClients,
		m.activeRooms,
		m.chatMessages,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one finished request. path should be a route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	method = strings.ToUpper(method)
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) IncInFlight() { m.httpInFlight.Inc() }
func (m *Metrics) DecInFlight() { m.httpInFlight.Dec() }

// RecordTranslation records a codec call. outcome is the morse.Code of the
// call's error, "OK" on success.
func (m *Metrics) RecordTranslation(direction, outcome string, duration time.Duration) {
	if direction == "" {
		direction = "unknown"
	}
	m.translations.WithLabelValues(direction, outcome).Inc()
	m.translationDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

// SetConnectedClients and SetActiveRooms are driven by the chat hub loop.
func (m *Metrics) SetConnectedClients(n int) { m.connectedClients.Set(float64(n)) }
func (m *Metrics) SetActiveRooms(n int)      { m.activeRooms.Set(float64(n)) }

// RecordChatMessage counts a relayed (or rejected) chat message.
func (m *Metrics) RecordChatMessage(encoding, outcome string) {
	m.chatMessages.WithLabelValues(encoding, outcome).Inc()
}
