// Package metrics records reindex run metrics and pushes them to a Prometheus Pushgateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reindexer"

// Run holds the metrics of a single reindex run on its own registry.
// A batch job is not scraped, so nothing is registered globally.
type Run struct {
	registry *prometheus.Registry
	// success holds metrics exported only after a successful run.
	success   *prometheus.Registry
	succeeded bool

	documentsIndexed prometheus.Counter
	documentsFailed  prometheus.Counter
	relationsLoaded  prometheus.Gauge
	runDuration      prometheus.Gauge
	lastSuccess      prometheus.Gauge
	fullRebuild      prometheus.Gauge
}

// NewRun creates run metrics registered on a fresh registry.
func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		success:  prometheus.NewRegistry(),
		documentsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Documents written to the search index in this run",
		}),
		documentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_failed_total",
			Help:      "Resources skipped because their document could not be built or written",
		}),
		relationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relations_loaded",
			Help:      "Relation rows loaded into the relationship map",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the run in seconds",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
		fullRebuild: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "full_rebuild",
			Help:      "1 if the run rebuilt the whole index, 0 for a filtered run",
		}),
	}

	r.registry.MustRegister(
		r.documentsIndexed,
		r.documentsFailed,
		r.relationsLoaded,
		r.runDuration,
		r.fullRebuild,
	)
	r.success.MustRegister(r.lastSuccess)
	return r
}

// DocumentIndexed counts one written document.
func (r *Run) DocumentIndexed() { r.documentsIndexed.Inc() }

// DocumentFailed counts one skipped resource.
func (r *Run) DocumentFailed() { r.documentsFailed.Inc() }

// RunFinished records the run outcome.
func (r *Run) RunFinished(relations int, fullRebuild bool, duration time.Duration, succeeded bool) {
	r.relationsLoaded.Set(float64(relations))
	r.runDuration.Set(duration.Seconds())
	if fullRebuild {
		r.fullRebuild.Set(1)
	} else {
		r.fullRebuild.Set(0)
	}
	r.succeeded = succeeded
	if succeeded {
		r.lastSuccess.SetToCurrentTime()
	}
}

// Gatherer exposes the run metrics, including the last-success gauge after a successful run.
func (r *Run) Gatherer() prometheus.Gatherer {
	if r.succeeded {
		return prometheus.Gatherers{r.registry, r.success}
	}
	return r.registry
}
