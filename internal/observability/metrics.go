package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Entitlement outcomes.
const (
	OutcomeSubscribed = "subscribed"
	OutcomeConsumed   = "consumed"
	OutcomeDuplicate  = "duplicate"
	OutcomeDenied     = "denied"
)

var (
	// entitlementDecisions counts gated accesses by quota kind and outcome.
	entitlementDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caerus_entitlement_decisions_total",
			Help: "Entitlement decisions by quota kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caerus_notifications_total",
			Help: "Push notifications by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	// outboundLatency records outbound call durations per upstream target
	// (apple, expo, gemini, jwks).
	outboundLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "caerus_outbound_request_duration_seconds",
			Help:    "Duration of outbound calls in seconds.",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"target", "outcome"},
	)
)

// RecordEntitlement counts one entitlement decision.
func RecordEntitlement(kind, outcome string) {
	entitlementDecisions.WithLabelValues(kind, outcome).Inc()
}

// RecordNotification counts one notification delivery attempt.
func RecordNotification(kind, outcome string) {
	notifications.WithLabelValues(kind, outcome).Inc()
}

// ObserveOutbound records the latency of an outbound call started at start.
// A nil err is recorded as "ok".
func ObserveOutbound(target string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	outboundLatency.WithLabelValues(target, outcome).Observe(time.Since(start).Seconds())
}
