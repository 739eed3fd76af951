package monitor

import "github.com/prometheus/client_golang/prometheus"

// Prometheus fleet metrics.
var (
	cyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "printwatch_monitor_cycles_total",
			Help: "Total number of completed monitoring cycles.",
		},
	)
	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "printwatch_monitor_cycle_duration_seconds",
			Help:    "Duration of a full monitoring cycle in seconds.",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
	deviceChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printwatch_device_checks_total",
			Help: "Total number of printer reachability checks by result.",
		},
		[]string{"result"},
	)
	alertsRaisedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "printwatch_alerts_raised_total",
			Help: "Total number of connection alerts raised.",
		},
	)
)

func init() {
	prometheus.MustRegister(cyclesTotal)
	prometheus.MustRegister(cycleDuration)
	prometheus.MustRegister(deviceChecksTotal)
	prometheus.MustRegister(alertsRaisedTotal)
}
