package grove

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "grove_validate_duration_seconds",
			Help:    "Duration of layout validation runs in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	validateRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grove_validate_runs_total",
			Help: "Total number of layout validation runs",
		},
		[]string{"status"}, // pass, fail or error
	)

	validateOutcomesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grove_validate_outcomes_total",
			Help: "Total number of outcome records emitted by validation runs",
		},
	)

	validateFailedNodesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grove_validate_failed_nodes_total",
			Help: "Total number of failing schema nodes across validation runs",
		},
	)
)

func observeValidation(d time.Duration, outcomes, fails int, status string) {
	validateDuration.Observe(d.Seconds())
	validateRunsTotal.WithLabelValues(status).Inc()
	validateOutcomesTotal.Add(float64(outcomes))
	validateFailedNodesTotal.Add(float64(fails))
}
