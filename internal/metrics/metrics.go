// Package metrics exposes prometheus counters and gauges for the
// operations the engine performs, surfaced by the CLI's `metrics`
// subcommand and suitable for scraping when wired into an HTTP handler.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry groups every metric taskstore records. A process normally
// has exactly one, constructed with NewRegistry.
type Registry struct {
	Writes       *prometheus.CounterVec
	Deletes      *prometheus.CounterVec
	Syncs        prometheus.Counter
	SyncErrors   prometheus.Counter
	MergeResults *prometheus.CounterVec
	CacheRows    *prometheus.GaugeVec

	reg *prometheus.Registry
}

// NewRegistry constructs and registers every metric on a fresh
// prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.Writes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskstore_writes_total",
		Help: "Total records created or updated, by collection.",
	}, []string{"collection"})

	r.Deletes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskstore_deletes_total",
		Help: "Total tombstones appended, by collection.",
	}, []string{"collection"})

	r.Syncs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskstore_syncs_total",
		Help: "Total cache rebuilds performed.",
	})

	r.SyncErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskstore_sync_errors_total",
		Help: "Total cache rebuilds that failed.",
	})

	r.MergeResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taskstore_merge_results_total",
		Help: "Total three-way merges, by outcome (merged|conflict).",
	}, []string{"outcome"})

	r.CacheRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "taskstore_cache_rows",
		Help: "Rows currently cached, by collection.",
	}, []string{"collection"})

	r.reg.MustRegister(r.Writes, r.Deletes, r.Syncs, r.SyncErrors, r.MergeResults, r.CacheRows)
	return r
}

// Gatherer exposes the underlying prometheus registry for an HTTP
// exposition handler (promhttp.HandlerFor) or the CLI's text renderer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
