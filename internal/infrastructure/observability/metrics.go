// Package observability exposes the sync engine's Prometheus counters.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's counters. One instance is shared by the
// webhook path and the reconciliation sweep; both feed the same import
// outcome counters.
type Metrics struct {
	WebhookEventsReceived prometheus.Counter
	WebhookEventsDropped  prometheus.Counter
	ActivitiesImported    prometheus.Counter
	ActivitiesSkipped     prometheus.Counter
	ActivitiesFailed      prometheus.Counter
	TokenRefreshes        prometheus.Counter
	ReconciliationRuns    prometheus.Counter
}

// NewMetrics builds the counter set and registers it with the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WebhookEventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stridesync",
			Subsystem: "webhook",
			Name:      "events_received_total",
			Help:      "Webhook event deliveries accepted over HTTP.",
		}),
		WebhookEventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stridesync",
			Subsystem: "webhook",
			Name:      "events_dropped_total",
			Help:      "Webhook events dropped before an import attempt (non-create, unknown athlete, resolution failure).",
		}),
		ActivitiesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stridesync",
			Subsystem: "import",
			Name:      "activities_imported_total",
			Help:      "Activities stored as workouts.",
		}),
		ActivitiesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stridesync",
			Subsystem: "import",
			Name:      "activities_skipped_total",
			Help:      "Activities skipped as already imported.",
		}),
		ActivitiesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stridesync",
			Subsystem: "import",
			Name:      "activities_failed_total",
			Help:      "Activities that failed to import.",
		}),
		TokenRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stridesync",
			Subsystem: "oauth",
			Name:      "token_refreshes_total",
			Help:      "Access token refreshes performed against the provider.",
		}),
		ReconciliationRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stridesync",
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Completed reconciliation sweeps.",
		}),
	}

	reg.MustRegister(
		m.WebhookEventsReceived,
		m.WebhookEventsDropped,
		m.ActivitiesImported,
		m.ActivitiesSkipped,
		m.ActivitiesFailed,
		m.TokenRefreshes,
		m.ReconciliationRuns,
	)
	return m
}

// NewTestMetrics builds an unshared counter set for tests.
func NewTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
