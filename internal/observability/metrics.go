package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricemonitor_fetches_total",
			Help: "Outbound page fetches by host and result",
		},
		[]string{"host", "status"},
	)

	ListingsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricemonitor_listings_extracted_total",
			Help: "Listings extracted per competitor",
		},
		[]string{"competitor"},
	)

	SweepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricemonitor_sweeps_total",
			Help: "Completed full sweeps",
		},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricemonitor_sweep_duration_seconds",
			Help:    "Wall-clock duration of a full sweep",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// Register installs all collectors on the default registry. Call once at
// startup.
func Register() {
	prometheus.MustRegister(FetchesTotal, ListingsExtracted, SweepsTotal, SweepDuration)
}
