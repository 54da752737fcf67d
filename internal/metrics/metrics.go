package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics counts gateway round trips and session transitions. A nil
// *ClientMetrics is a no-op.
type ClientMetrics struct {
	gatewayCalls       *prometheus.CounterVec
	gatewayLatency     *prometheus.HistogramVec
	sessionTransitions *prometheus.CounterVec
}

func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medbook",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Gateway round trips by operation and outcome",
		}, []string{"operation", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medbook",
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Latency of gateway round trips",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		sessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medbook",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session store transitions by resulting state and data source",
		}, []string{"state", "mode"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.gatewayCalls, m.gatewayLatency, m.sessionTransitions)
	return m
}

func (m *ClientMetrics) ObserveGatewayCall(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(operation, outcome).Inc()
	m.gatewayLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *ClientMetrics) ObserveSessionTransition(state, mode string) {
	if m == nil {
		return
	}
	if mode == "" {
		mode = "none"
	}
	m.sessionTransitions.WithLabelValues(state, mode).Inc()
}
