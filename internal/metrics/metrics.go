// Package metrics records pipeline progress in a Prometheus registry. A batch run has
// no scrape endpoint, so the registry is dumped in text exposition format at the end.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the registry and the pipeline collectors.
type Recorder struct {
	registry *prometheus.Registry

	YearsProcessed *prometheus.CounterVec
	FeatureRows    *prometheus.CounterVec
	StageSeconds   *prometheus.HistogramVec
}

// New returns a recorder with every collector registered on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		YearsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jurisnet_years_processed_total",
				Help: "Years assembled into a feature table",
			},
			[]string{"pipeline"},
		),
		FeatureRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jurisnet_feature_rows_total",
				Help: "Entity-year rows written to a feature table",
			},
			[]string{"pipeline"},
		),
		StageSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jurisnet_stage_seconds",
				Help:    "Wall time of a run stage",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"stage"},
		),
	}
	r.registry.MustRegister(r.YearsProcessed, r.FeatureRows, r.StageSeconds)
	return r
}

// Year counts one assembled year of pipeline with rows new rows.
func (r *Recorder) Year(pipeline string, rows int) {
	r.YearsProcessed.WithLabelValues(pipeline).Inc()
	r.FeatureRows.WithLabelValues(pipeline).Add(float64(rows))
}

// Stage starts timing stage; call the returned func when it ends.
func (r *Recorder) Stage(stage string) func() {
	start := time.Now()
	return func() {
		r.StageSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path in the node exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
