// Package metrics defines the Prometheus instrumentation for the poll loop,
// alert pipeline and inbound chat handling.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storebot"

type Metrics struct {
	PollTicks        *prometheus.CounterVec
	AlertsFired      *prometheus.CounterVec
	DispatchAttempts prometheus.Counter
	DispatchFailures prometheus.Counter
	UpdatesReceived  *prometheus.CounterVec
	OutageActive     prometheus.Gauge
}

// New registers all collectors on reg and returns the handle used across
// the application.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PollTicks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_ticks_total",
			Help:      "Poll loop ticks by outcome.",
		}, []string{"outcome"}),
		AlertsFired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_fired_total",
			Help:      "Alerts decided by the policy engine, by kind.",
		}, []string{"kind"}),
		DispatchAttempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_attempts_total",
			Help:      "Delivery attempts against the chat transport, including retries.",
		}),
		DispatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_failures_total",
			Help:      "Alerts dropped after exhausting delivery retries.",
		}),
		UpdatesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_received_total",
			Help:      "Inbound chat updates by kind.",
		}, []string{"kind"}),
		OutageActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_outage_active",
			Help:      "1 while an unresolved store API outage alert is active.",
		}),
	}
}
