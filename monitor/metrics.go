package monitor

import "github.com/prometheus/client_golang/prometheus"

// metrics collects the counters/gauges the Publish dispatch loop updates.
// Registration with a caller's registry is left to Manager.Collectors
// rather than registering against prometheus.DefaultRegisterer, so a
// process hosting multiple Managers doesn't collide on metric names.
type metrics struct {
	publishInFlight        prometheus.Gauge
	notificationsDelivered prometheus.Counter
	republishAttempts      prometheus.Counter
	publishErrors          prometheus.Counter
	subscriptionsTornDown  prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		publishInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "opcua_client",
			Subsystem: "monitor",
			Name:      "publish_requests_in_flight",
			Help:      "Number of Publish requests currently outstanding against the server.",
		}),
		notificationsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "opcua_client",
			Subsystem: "monitor",
			Name:      "notifications_delivered_total",
			Help:      "Total number of data-change and event notifications delivered to observers.",
		}),
		republishAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "opcua_client",
			Subsystem: "monitor",
			Name:      "republish_attempts_total",
			Help:      "Total number of Republish calls issued after a detected sequence-number gap.",
		}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "opcua_client",
			Subsystem: "monitor",
			Name:      "publish_errors_total",
			Help:      "Total number of Publish calls that returned an error.",
		}),
		subscriptionsTornDown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "opcua_client",
			Subsystem: "monitor",
			Name:      "subscriptions_torn_down_total",
			Help:      "Total number of subscriptions torn down locally after BadNoSubscription or a missed keep-alive deadline.",
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.publishInFlight,
		m.notificationsDelivered,
		m.republishAttempts,
		m.publishErrors,
		m.subscriptionsTornDown,
	}
}
