package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metadata cache metrics, labelled by ProviderConfig.Group.
var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_cache_requests_total",
			Help: "Metadata cache lookups by result (hit or miss).",
		},
		[]string{"group", "result"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_cache_evictions_total",
			Help: "Metadata cache entries dropped to respect the size bound or the TTL.",
		},
		[]string{"group"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, EvictionsTotal)
}

var (
	gaugesMu sync.Mutex
	gauges   = make(map[string]prometheus.GaugeFunc)
	// gaugeReg is swapped for a private registry in tests
	gaugeReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// trackEntries exposes size() as the metadata_cache_entries gauge of group. The
// value is read at scrape time. A later cache with the same group takes over.
func trackEntries(group string, size func() int) {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "metadata_cache_entries",
		Help:        "Entries currently held by the metadata cache.",
		ConstLabels: prometheus.Labels{"group": group},
	}, func() float64 { return float64(size()) })

	gaugesMu.Lock()
	defer gaugesMu.Unlock()
	if old, ok := gauges[group]; ok {
		gaugeReg.Unregister(old)
	}
	gauges[group] = gauge
	_ = gaugeReg.Register(gauge)
}

func untrackEntries(group string) {
	gaugesMu.Lock()
	defer gaugesMu.Unlock()
	if gauge, ok := gauges[group]; ok {
		gaugeReg.Unregister(gauge)
		delete(gauges, group)
	}
}
