package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Export metrics
var (
	CaptionExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caption_exports_total",
			Help: "Total number of caption exports by output format and status.",
		},
		[]string{"format", "status"},
	)

	TimedTextSkippedEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timedtext_skipped_entries_total",
			Help: "Total number of timed-text entries dropped because a start, duration or text was missing.",
		},
	)
)

// Batch metrics
var (
	BatchItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_items_total",
			Help: "Total number of batch items that reached a terminal state.",
		},
		[]string{"status"},
	)

	BatchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_duration_seconds",
			Help:    "Wall-clock duration of batch runs, delays included.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

func init() {
	prometheus.MustRegister(
		CaptionExportsTotal,
		TimedTextSkippedEntriesTotal,
		BatchItemsTotal,
		BatchDurationSeconds,
	)
}
