package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// runsStarted counts simulation runs accepted by the API.
	runsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "funnelsim_runs_started_total",
			Help: "Simulation runs accepted by the API",
		},
	)

	// runsCompleted counts finished runs by terminal status.
	runsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnelsim_runs_completed_total",
			Help: "Simulation runs finished, by terminal status",
		},
		[]string{"status"},
	)

	// activeRuns tracks runs currently executing.
	activeRuns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "funnelsim_active_runs",
			Help: "Simulation runs currently executing",
		},
	)

	// requestDuration observes handler latency by endpoint.
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "funnelsim_request_duration_seconds",
			Help:    "HTTP request latency by endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(runsStarted)
	prometheus.MustRegister(runsCompleted)
	prometheus.MustRegister(activeRuns)
	prometheus.MustRegister(requestDuration)
}
