package modellist

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmsettings",
			Subsystem: "modellist",
			Name:      "fetch_total",
			Help:      "Remote model list fetches by outcome",
		},
		[]string{"provider", "outcome"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmsettings",
			Subsystem: "modellist",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of remote model list fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	sharedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmsettings",
			Subsystem: "modellist",
			Name:      "shared_results_total",
			Help:      "Requests answered by a fetch another request started",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal, fetchDuration, sharedTotal)
}
