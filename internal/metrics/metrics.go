// Package metrics records Prometheus metrics for extraction runs. A command
// line run has no scrape endpoint, so the registry is written out in the
// node_exporter textfile format instead.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the metrics of one run. A nil *Recorder discards everything.
type Recorder struct {
	registry *prometheus.Registry

	// TablesExported counts tables written to TSV
	TablesExported *prometheus.CounterVec

	// RowsExported counts rows written per table
	RowsExported *prometheus.CounterVec

	// BytesWritten counts TSV bytes written per table
	BytesWritten *prometheus.CounterVec

	// TableDuration measures time taken to export one table
	TableDuration *prometheus.HistogramVec

	// Runs counts extraction runs by outcome
	Runs *prometheus.CounterVec

	// LastRunTimestamp records when the last run finished
	LastRunTimestamp *prometheus.GaugeVec
}

// NewRecorder creates a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		TablesExported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mdbextract_tables_exported_total",
			Help: "The total number of tables exported to TSV",
		}, []string{"database"}),
		RowsExported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mdbextract_rows_exported_total",
			Help: "The total number of rows exported to TSV",
		}, []string{"database", "table"}),
		BytesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mdbextract_bytes_written_total",
			Help: "The total number of TSV bytes written",
		}, []string{"database", "table"}),
		TableDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mdbextract_table_export_duration_seconds",
			Help:    "Time taken to export one table",
			Buckets: prometheus.DefBuckets,
		}, []string{"database"}),
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mdbextract_runs_total",
			Help: "The total number of extraction runs",
		}, []string{"database", "status"}),
		LastRunTimestamp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mdbextract_last_run_timestamp_seconds",
			Help: "Timestamp of the last finished extraction run",
		}, []string{"database"}),
	}
}

// ObserveTable records one exported table.
func (r *Recorder) ObserveTable(database, table string, rows, bytes int64, took time.Duration) {
	if r == nil {
		return
	}
	r.TablesExported.WithLabelValues(database).Inc()
	r.RowsExported.WithLabelValues(database, table).Add(float64(rows))
	r.BytesWritten.WithLabelValues(database, table).Add(float64(bytes))
	r.TableDuration.WithLabelValues(database).Observe(took.Seconds())
}

// ObserveRun records the outcome of a run.
func (r *Recorder) ObserveRun(database string, err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	r.Runs.WithLabelValues(database, status).Inc()
	r.LastRunTimestamp.WithLabelValues(database).SetToCurrentTime()
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
