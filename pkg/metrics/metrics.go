// Package metrics counts conversion outcomes with Prometheus collectors.
//
// seevgen runs as a short-lived command, so metrics live in a private
// registry and are exported with WriteTextfile for the node exporter's
// textfile collector rather than served over HTTP.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Field outcomes.
const (
	OutcomeFound   = "found"
	OutcomeMissing = "missing"
)

// Metrics holds the Prometheus collectors for one process.
//
// Metrics:
//   - seevgen_notices_total{meeting_type} - notices converted
//   - seevgen_fields_total{field,outcome} - field extraction outcomes
//   - seevgen_resolutions_total - resolutions extracted
//   - seevgen_failures_total{stage} - failed conversions by stage
//   - seevgen_conversion_duration_seconds - end-to-end conversion time
type Metrics struct {
	registry *prometheus.Registry

	NoticesTotal       *prometheus.CounterVec
	FieldsTotal        *prometheus.CounterVec
	ResolutionsTotal   prometheus.Counter
	FailuresTotal      *prometheus.CounterVec
	ConversionDuration prometheus.Histogram
}

// New creates the collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		NoticesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seevgen_notices_total",
				Help: "Total number of notices converted",
			},
			[]string{"meeting_type"},
		),
		FieldsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seevgen_fields_total",
				Help: "Field extraction outcomes",
			},
			[]string{"field", "outcome"},
		),
		ResolutionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "seevgen_resolutions_total",
				Help: "Total number of agenda resolutions extracted",
			},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seevgen_failures_total",
				Help: "Failed conversions by pipeline stage",
			},
			[]string{"stage"},
		),
		ConversionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seevgen_conversion_duration_seconds",
				Help:    "Duration of a notice conversion in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 30},
			},
		),
	}
}

// RecordCoverage counts one found or missing outcome per field.
func (m *Metrics) RecordCoverage(coverage map[string]bool) {
	for field, found := range coverage {
		outcome := OutcomeMissing
		if found {
			outcome = OutcomeFound
		}
		m.FieldsTotal.WithLabelValues(field, outcome).Inc()
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in Prometheus text format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
