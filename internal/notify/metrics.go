package notify

import "github.com/prometheus/client_golang/prometheus"

// Prometheus relay metrics.
var (
	eventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "printwatch_notify_events_dropped_total",
			Help: "Total number of notifications discarded before delivery because the queue was full.",
		},
	)
	eventsBroadcastTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "printwatch_notify_events_broadcast_total",
			Help: "Total number of notifications handed to subscribers.",
		},
	)
)

func init() {
	prometheus.MustRegister(eventsDroppedTotal)
	prometheus.MustRegister(eventsBroadcastTotal)
}
