package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

const namespace = "predictor_client"

// Metrics holds the shell's collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	sessionTransitions *prometheus.CounterVec
	gatewayCalls       *prometheus.CounterVec
	gatewayDuration    *prometheus.HistogramVec
	paymentOutcomes    *prometheus.CounterVec
	sessionState       *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_transitions_total",
				Help:      "Session events by type and resulting state",
			},
			[]string{"event", "to"},
		),
		gatewayCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_calls_total",
				Help:      "Calls to the identity, billing and prediction services by outcome",
			},
			[]string{"operation", "outcome"},
		),
		gatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gateway_call_duration_seconds",
				Help:      "Duration of calls to remote services",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10},
			},
			[]string{"operation"},
		),
		paymentOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_attempts_total",
				Help:      "Finished payment attempts by terminal state",
			},
			[]string{"outcome"},
		),
		sessionState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "session_state",
				Help:      "1 for the current session state, 0 otherwise",
			},
			[]string{"state"},
		),
	}
}

// ObserveCall records one remote call. Its signature matches apiclient.Observer.
func (m *Metrics) ObserveCall(operation string, kind domain.ErrorKind, elapsed time.Duration) {
	outcome := "ok"
	if kind != "" {
		outcome = string(kind)
	}
	m.gatewayCalls.WithLabelValues(operation, outcome).Inc()
	m.gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveSession is a session listener; pass it to SessionController.Subscribe
func (m *Metrics) ObserveSession(ev domain.SessionEvent) {
	m.sessionTransitions.WithLabelValues(string(ev.Type), string(ev.To)).Inc()

	if ev.Type == domain.PaymentOutcomeEvent {
		if outcome, ok := ev.Metadata["outcome"].(string); ok {
			m.paymentOutcomes.WithLabelValues(outcome).Inc()
		}
	}

	if ev.Changed() {
		m.sessionState.WithLabelValues(string(ev.From)).Set(0)
		m.sessionState.WithLabelValues(string(ev.To)).Set(1)
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
