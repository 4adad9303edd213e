package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Line outcomes.
const (
	OutcomeAppended  = "appended"
	OutcomeRetracted = "retracted"
	OutcomeNoop      = "noop"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

var (
	linesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boothlag",
			Name:      "lines_total",
			Help:      "Total number of entry lines handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "boothlag",
			Name:      "analysis_seconds",
			Help:      "Ledger load and analysis latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	ledgerRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "boothlag",
			Name:      "ledger_records",
			Help:      "Number of stage records in the ledger after the last analysis.",
		},
	)

	frontiersLearned = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "boothlag",
			Name:      "frontiers_learned",
			Help:      "Number of (slot, stage) groups with a non-empty frontier.",
		},
	)
)

// Register attaches boothlag collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		linesTotal,
		analysisDurationSeconds,
		ledgerRecords,
		frontiersLearned,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveLine counts one handled line.
func ObserveLine(outcome string) {
	linesTotal.WithLabelValues(outcome).Inc()
}

// ObserveAnalysis records one analysis pass and the resulting ledger shape.
func ObserveAnalysis(duration time.Duration, records, frontiers int) {
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
	ledgerRecords.Set(float64(records))
	frontiersLearned.Set(float64(frontiers))
}
