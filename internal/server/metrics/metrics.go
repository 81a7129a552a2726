// Package metrics defines the Prometheus instruments exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// TransitionsTotal counts lifecycle transition attempts by operation
	// (receive/deliver) and result (success/conflict/blocked/not_found/error).
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vdc_transitions_total",
			Help: "Total number of lifecycle transition attempts.",
		},
		[]string{"op", "result"},
	)

	// SyncItemsTotal counts per-vehicle sync attempts by outcome
	// (success/rejected/network_error).
	SyncItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vdc_sync_items_total",
			Help: "Total number of per-vehicle pushes to the external platform.",
		},
		[]string{"outcome"},
	)

	// SyncCyclesTotal counts completed reconciliation cycles by trigger
	// (auto/manual).
	SyncCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vdc_sync_cycles_total",
			Help: "Total number of completed sync reconciliation cycles.",
		},
		[]string{"trigger"},
	)

	// SyncCycleDuration observes the wall time of one reconciliation cycle.
	SyncCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vdc_sync_cycle_duration_seconds",
			Help:    "Duration of sync reconciliation cycles.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(SyncItemsTotal)
	prometheus.MustRegister(SyncCyclesTotal)
	prometheus.MustRegister(SyncCycleDuration)
}
