package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one process. The zero value is not
// usable; call NewMetrics.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	keptNodes     prometheus.Gauge
	generated     prometheus.Counter
	filesWritten  prometheus.Counter
	iterations    prometheus.Counter
	diagnostics   prometheus.Counter
	corrections   prometheus.Counter
	outcomes      *prometheus.CounterVec
}

// NewMetrics registers the jslice collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jslice_runs_total",
			Help: "Slice runs by final status.",
		}, []string{"status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jslice_stage_duration_seconds",
			Help:    "Duration of each run stage.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		keptNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jslice_kept_nodes",
			Help: "Nodes in the keep set of the last run.",
		}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jslice_generated_groups_total",
			Help: "Synthetic symbol groups generated.",
		}),
		filesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jslice_files_written_total",
			Help: "Source files written to slice outputs.",
		}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jslice_oracle_iterations_total",
			Help: "Type-correction oracle iterations.",
		}),
		diagnostics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jslice_oracle_diagnostics_total",
			Help: "Type diagnostics read from the checker.",
		}),
		corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jslice_oracle_corrections_total",
			Help: "Diagnostics that changed the correction set.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jslice_oracle_outcomes_total",
			Help: "Oracle loop outcomes.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.runs, m.stageDuration, m.keptNodes, m.generated, m.filesWritten,
		m.iterations, m.diagnostics, m.corrections, m.outcomes,
	)
	return m
}

// Registry exposes the underlying registry, for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(status string, kept, generated, files int) {
	m.runs.WithLabelValues(status).Inc()
	m.keptNodes.Set(float64(kept))
	m.generated.Add(float64(generated))
	m.filesWritten.Add(float64(files))
}

// RecordIteration records one oracle iteration.
func (m *Metrics) RecordIteration(diagnostics, applied int) {
	m.iterations.Inc()
	m.diagnostics.Add(float64(diagnostics))
	m.corrections.Add(float64(applied))
}

// RecordOutcome records how an oracle loop ended.
func (m *Metrics) RecordOutcome(outcome string) {
	m.outcomes.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the registry in the text exposition format,
// atomically, for the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
