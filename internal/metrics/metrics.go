// Package metrics records ingestion and reclassification results as
// Prometheus metrics. A batch job has nothing to scrape, so the registry is
// exported by writing a node_exporter textfile or pushing to a Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "recipe_ingest"

// Run is the summary of one finished ingestion run.
type Run struct {
	Source   string
	Fatal    bool
	Fetched  int
	Saved    int
	Skipped  int
	Errored  int
	Duration time.Duration
	EndedAt  time.Time
}

// Recorder owns a private registry so repeated runs in one process (and
// tests) never collide with the global default registry.
type Recorder struct {
	registry *prometheus.Registry

	records      *prometheus.CounterVec
	runs         *prometheus.CounterVec
	duration     *prometheus.GaugeVec
	lastRun      *prometheus.GaugeVec
	lastSuccess  *prometheus.GaugeVec
	analyzed     prometheus.Counter
	flagsFixed   *prometheus.CounterVec
	updateErrors prometheus.Counter
}

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records handled by ingestion runs, by source and outcome.",
		}, []string{"source", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Ingestion runs by source and terminal state.",
		}, []string{"source", "state"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall-clock duration of the last ingestion run.",
		}, []string{"source"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last ingestion run ended.",
		}, []string{"source"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last ingestion run finished, 0 if it aborted.",
		}, []string{"source"}),
		analyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclassify_analyzed_total",
			Help:      "Recipes re-classified by the reclassification tool.",
		}),
		flagsFixed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclassify_flags_fixed_total",
			Help:      "Stored dietary flags that changed on reclassification.",
		}, []string{"flag"}),
		updateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reclassify_update_errors_total",
			Help:      "Flag updates that failed during reclassification.",
		}),
	}

	r.registry.MustRegister(
		r.records, r.runs, r.duration, r.lastRun, r.lastSuccess,
		r.analyzed, r.flagsFixed, r.updateErrors,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records the final statistics of an ingestion run.
func (r *Recorder) ObserveRun(run Run) {
	r.records.WithLabelValues(run.Source, "fetched").Add(float64(run.Fetched))
	r.records.WithLabelValues(run.Source, "saved").Add(float64(run.Saved))
	r.records.WithLabelValues(run.Source, "skipped").Add(float64(run.Skipped))
	r.records.WithLabelValues(run.Source, "errored").Add(float64(run.Errored))

	state, success := "done", 1.0
	if run.Fatal {
		state, success = "fatal_error", 0
	}
	r.runs.WithLabelValues(run.Source, state).Inc()
	r.lastSuccess.WithLabelValues(run.Source).Set(success)
	r.duration.WithLabelValues(run.Source).Set(run.Duration.Seconds())
	r.lastRun.WithLabelValues(run.Source).Set(float64(run.EndedAt.Unix()))
}

// ObserveReclassification records one reclassification pass.
// fixed maps a flag name to the number of recipes whose flag changed.
func (r *Recorder) ObserveReclassification(analyzed, errors int, fixed map[string]int) {
	r.analyzed.Add(float64(analyzed))
	r.updateErrors.Add(float64(errors))
	for flag, n := range fixed {
		r.flagsFixed.WithLabelValues(flag).Add(float64(n))
	}
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Push sends the registry to a Pushgateway under the given job name.
func (r *Recorder) Push(ctx context.Context, gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
