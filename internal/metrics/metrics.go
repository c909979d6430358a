// Package metrics holds the prometheus instruments shared across components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the counters and gauges the fleet server exposes on
// /metrics. One instance per process, registered on its own registry so
// tests can create isolated instances.
type Metrics struct {
	Registry *prometheus.Registry

	SessionsCreated  prometheus.Counter
	Resubscribes     prometheus.Counter
	LiveSessions     prometheus.Gauge
	ScreensDelivered prometheus.Counter
	ToastsDelivered  prometheus.Counter
	DeliveryFailures prometheus.Counter
	StrategyFailures prometheus.Counter
	ErrorsHandled    prometheus.Counter
	StatusReports    prometheus.Counter
	MalformedTopics  prometheus.Counter
}

// New creates a Metrics bundle on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillgrid_sessions_created_total",
			Help: "Sessions created on first terminal contact.",
		}),
		Resubscribes: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillgrid_resubscribes_total",
			Help: "Subscribe events for already-live sessions.",
		}),
		LiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tillgrid_live_sessions",
			Help: "Sessions currently held in the registry.",
		}),
		ScreensDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillgrid_screens_delivered_total",
			Help: "Full-screen messages delivered to terminals.",
		}),
		ToastsDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillgrid_toasts_delivered_total",
			Help: "Toast messages delivered to terminals.",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillgrid_delivery_failures_total",
			Help: "Message deliveries rejected by the transport.",
		}),
		StrategyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillgrid_strategy_failures_total",
			Help: "Transformation strategies skipped after an error.",
		}),
		ErrorsHandled: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillgrid_errors_handled_total",
			Help: "Failures routed through the error translator.",
		}),
		StatusReports: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillgrid_status_reports_total",
			Help: "Status reports recorded in the cache.",
		}),
		MalformedTopics: factory.NewCounter(prometheus.CounterOpts{
			Name: "tillgrid_malformed_topics_total",
			Help: "Subscribe events dropped for unparseable topics.",
		}),
	}
}
