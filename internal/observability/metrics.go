package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	InterviewSessions   prometheus.Gauge
	Transitions         *prometheus.CounterVec
	CollaboratorCalls   *prometheus.CounterVec
	CollaboratorLatency *prometheus.HistogramVec
	TranslationLookups  *prometheus.CounterVec
	WSMessages          *prometheus.CounterVec
}

func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InterviewSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "interview_sessions_active",
			Help:      "Number of live mock-interview sessions.",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_transitions_total",
			Help:      "Interview phase transitions by source and target phase.",
		}, []string{"from", "to"}),
		CollaboratorCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_calls_total",
			Help:      "External collaborator calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		CollaboratorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_latency_ms",
			Help:      "External collaborator latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000},
		}, []string{"operation"}),
		TranslationLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_lookups_total",
			Help:      "Translation cache lookups by result.",
		}, []string{"result"}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
	}
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.InterviewSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.InterviewSessions.Dec()
}

func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

// ObserveCall records one collaborator call; err == nil counts as "ok".
func (m *Metrics) ObserveCall(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CollaboratorCalls.WithLabelValues(operation, outcome).Inc()
	m.CollaboratorLatency.WithLabelValues(operation).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveTranslation(result string) {
	if m == nil {
		return
	}
	m.TranslationLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
