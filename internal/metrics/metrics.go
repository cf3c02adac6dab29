// Package metrics exposes scorecards as Prometheus gauges written to a
// node_exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-quality/internal/analyzer"
	"github.com/rxtech-lab/argo-quality/pkg/errors"
)

// Registry holds the quality gauges in a private Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	ScoreTotal       *prometheus.GaugeVec
	ComponentScore   *prometheus.GaugeVec
	Gaps             *prometheus.GaugeVec
	CalendarCoverage *prometheus.GaugeVec
	RunDuration      *prometheus.GaugeVec
}

func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		ScoreTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "argo_quality_score_total",
				Help: "Weighted data-quality score (0 to 100)",
			},
			[]string{"timeframe"},
		),

		ComponentScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "argo_quality_component_score",
				Help: "Score of a single scorecard component (0 to 100)",
			},
			[]string{"timeframe", "component"},
		),

		Gaps: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "argo_quality_gaps",
				Help: "Number of gaps by tag",
			},
			[]string{"timeframe", "reason"},
		),

		CalendarCoverage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "argo_quality_calendar_coverage",
				Help: "Share of high-impact events matched by anomalous gaps (0.0 to 1.0)",
			},
			[]string{"timeframe"},
		),

		RunDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "argo_quality_run_duration_seconds",
				Help: "Wall time of the analysis of one timeframe",
			},
			[]string{"timeframe"},
		),
	}

	r.registry.MustRegister(r.ScoreTotal, r.ComponentScore, r.Gaps, r.CalendarCoverage, r.RunDuration)

	return r
}

// Record sets every gauge of the result's timeframe.
func (r *Registry) Record(result *analyzer.Result) {
	if result == nil {
		return
	}

	tf := result.Timeframe.String()

	r.ScoreTotal.WithLabelValues(tf).Set(result.Scorecard.Total)

	for _, c := range result.Scorecard.Components {
		r.ComponentScore.WithLabelValues(tf, c.Name).Set(c.Value)
	}

	for reason, count := range result.CountByReason() {
		r.Gaps.WithLabelValues(tf, reason).Set(float64(count))
	}

	if result.CalendarAvailable {
		r.CalendarCoverage.WithLabelValues(tf).Set(result.Calendar.Coverage)
	}
}

// ObserveDuration records how long the analysis of tf took.
func (r *Registry) ObserveDuration(tf string, d time.Duration) {
	r.RunDuration.WithLabelValues(tf).Set(d.Seconds())
}

// WriteTextfile writes all gauges atomically in the text exposition format.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write metrics to %s", path)
	}

	return nil
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
