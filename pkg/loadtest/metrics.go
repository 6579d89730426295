package loadtest

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadtest_requests_total",
			Help: "Total number of prediction requests sent",
		},
		[]string{"status"},
	)
	requestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loadtest_request_duration_seconds",
			Help:    "Prediction round-trip time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)
	activeWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "loadtest_active_workers",
			Help: "Number of workers still sending requests",
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(activeWorkers)
}
