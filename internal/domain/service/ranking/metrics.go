package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	scoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "propinvest",
		Subsystem: "ranking",
		Name:      "scoring_duration_seconds",
		Help:      "Time spent scoring and ranking a population of areas.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), //nolint:mnd
	})

	refreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "propinvest",
		Subsystem: "ranking",
		Name:      "refreshes_total",
		Help:      "Stored ranking snapshots.",
	})

	rankedAreas = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "propinvest",
		Subsystem: "ranking",
		Name:      "areas",
		Help:      "Areas in the latest ranking snapshot.",
	})
)
