// Package metrics collects per-run Prometheus metrics and writes them in the
// node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder bundles run metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	resultsTotal  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	samplesTotal  *prometheus.CounterVec
	peakStormTide prometheus.Gauge
	lastRunTime   prometheus.Gauge
}

// New constructs and registers metrics.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stormtide_results_total",
				Help: "Sub-run results by sub-run and result code",
			},
			[]string{"subrun", "code"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stormtide_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		samplesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stormtide_samples_total",
				Help: "Samples processed by sub-run, split into kept and trimmed",
			},
			[]string{"subrun", "disposition"},
		),
		peakStormTide: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stormtide_peak_storm_tide_meters",
			Help: "Peak storm tide water level of the last run",
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stormtide_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
	r.registry.MustRegister(
		r.resultsTotal,
		r.stageDuration,
		r.samplesTotal,
		r.peakStormTide,
		r.lastRunTime,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordResult counts a sub-run's result code.
func (r *Recorder) RecordResult(subrun string, code int) {
	r.resultsTotal.WithLabelValues(subrun, strconv.Itoa(code)).Inc()
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordSamples counts samples kept and trimmed by a chop.
func (r *Recorder) RecordSamples(subrun string, kept, trimmed int) {
	r.samplesTotal.WithLabelValues(subrun, "kept").Add(float64(kept))
	r.samplesTotal.WithLabelValues(subrun, "trimmed").Add(float64(trimmed))
}

// SetPeakStormTide records the run's peak water level.
func (r *Recorder) SetPeakStormTide(m float64) {
	r.peakStormTide.Set(m)
}

// MarkFinished stamps the run completion time.
func (r *Recorder) MarkFinished(t time.Time) {
	r.lastRunTime.Set(float64(t.Unix()))
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
