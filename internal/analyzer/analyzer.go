// Package analyzer runs the full quality pipeline for one timeframe:
// resample, extract gaps, tag explainable windows, match the economic
// calendar, build the report tables and score.
package analyzer

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quality/internal/calendar"
	"github.com/rxtech-lab/argo-quality/internal/config"
	"github.com/rxtech-lab/argo-quality/internal/gaps"
	"github.com/rxtech-lab/argo-quality/internal/logger"
	"github.com/rxtech-lab/argo-quality/internal/resample"
	"github.com/rxtech-lab/argo-quality/internal/scoring"
	"github.com/rxtech-lab/argo-quality/internal/stats"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/rxtech-lab/argo-quality/internal/window"
	"go.uber.org/zap"
)

// Period describes the slice of the input a result was computed on.
type Period struct {
	Label string    `yaml:"label" json:"label"`
	Start time.Time `yaml:"start" json:"start"`
	End   time.Time `yaml:"end" json:"end"`
	// Fallback is set when the period held no bars and the full series was used.
	Fallback bool `yaml:"fallback" json:"fallback"`
}

type Result struct {
	Timeframe types.Timeframe `yaml:"timeframe" json:"timeframe"`
	Period    *Period         `yaml:"period,omitempty" json:"period,omitempty"`
	// Bars is the number of bars after resampling.
	Bars int `yaml:"bars" json:"bars"`
	// Gaps holds every gap with its tag and calendar flag.
	Gaps []types.TaggedGap `yaml:"gaps" json:"gaps"`
	// Anomalies are the gaps no explainable window matched.
	Anomalies         []types.TaggedGap    `yaml:"anomalies" json:"anomalies"`
	CalendarAvailable bool                 `yaml:"calendar_available" json:"calendar_available"`
	Calendar          calendar.Metrics     `yaml:"calendar" json:"calendar"`
	Durations         stats.DurationStats  `yaml:"durations" json:"durations"`
	Sessions          []stats.SessionShare `yaml:"sessions" json:"sessions"`
	Monthly           []stats.MonthRow     `yaml:"monthly" json:"monthly"`
	Scorecard         types.Scorecard      `yaml:"scorecard" json:"scorecard"`
}

// CountByReason returns the number of gaps per tag. Anomalies are counted under "anomalous".
func (r *Result) CountByReason() map[string]int {
	counts := make(map[string]int)

	for _, g := range r.Gaps {
		if g.Anomalous() {
			counts["anomalous"]++
		} else {
			counts[string(g.Reason)]++
		}
	}

	return counts
}

type Analyzer struct {
	cfg       config.Config
	timeframe types.Timeframe
	logger    *logger.Logger
}

// NewAnalyzer creates an analyzer for the configured timeframe.
func NewAnalyzer(cfg config.Config, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Analyzer{
		cfg:       cfg,
		timeframe: cfg.Timeframe(),
		logger:    log.Named("analyzer"),
	}
}

// WithTimeframe returns a copy of the analyzer bound to tf.
func (a *Analyzer) WithTimeframe(tf types.Timeframe) *Analyzer {
	if !tf.Valid() {
		a.logger.Warn("Unsupported timeframe, using default",
			zap.String("timeframe", string(tf)),
			zap.String("default", string(types.DefaultTimeframe)),
		)

		tf = types.DefaultTimeframe
	}

	clone := *a
	clone.timeframe = tf

	return &clone
}

func (a *Analyzer) Timeframe() types.Timeframe {
	return a.timeframe
}

// Run analyses bars. events is None when no economic calendar is available.
// Run never fails: empty inputs produce empty tables and neutral scores.
func (a *Analyzer) Run(bars []types.Bar, events optional.Option[[]types.HighImpactEvent]) *Result {
	tf := a.timeframe
	log := a.logger.With(zap.String("timeframe", tf.String()))

	resampled := resample.Resample(bars, tf)
	log.Debug("Resampled bars", zap.Int("raw", len(bars)), zap.Int("bars", len(resampled)))

	extracted := gaps.Extract(resampled, tf)
	log.Debug("Extracted gaps", zap.Int("gaps", len(extracted)))

	tagger := window.NewTaggerForGaps(extracted, a.cfg.TaggerConfig(), log)
	tagged := tagger.Tag(extracted)

	result := &Result{
		Timeframe: tf,
		Bars:      len(resampled),
	}

	calendarMetrics := optional.None[calendar.Metrics]()

	if list, err := events.Take(); err == nil {
		var metrics calendar.Metrics

		tagged, metrics = calendar.Match(tagged, list, a.cfg.Tolerance())
		calendarMetrics = optional.Some(metrics)
		result.CalendarAvailable = true
		result.Calendar = metrics

		log.Debug("Matched economic calendar",
			zap.Int("high_events", metrics.TotalHighEvents),
			zap.Int("matched", metrics.MatchedHighEvents),
			zap.Float64("coverage", metrics.Coverage),
		)
	}

	anomalies := window.Anomalies(tagged)

	result.Gaps = tagged
	result.Anomalies = anomalies
	result.Durations = stats.Durations(anomalies)
	result.Sessions = stats.Sessions(anomalies)
	result.Monthly = stats.Monthly(resampled, anomalies)
	result.Scorecard = scoring.Score(scoring.Input{
		Timeframe: tf,
		Bars:      resampled,
		Anomalies: anomalies,
		Calendar:  calendarMetrics,
	})

	log.Debug("Scored timeframe",
		zap.Int("anomalies", len(anomalies)),
		zap.Float64("total", result.Scorecard.Total),
	)

	return result
}

// RunPeriod analyses the raw bars in [start, end). When the period holds no
// bars the full series is analysed instead and Period.Fallback is set.
func (a *Analyzer) RunPeriod(bars []types.Bar, events optional.Option[[]types.HighImpactEvent], period Period) *Result {
	sliced := Slice(bars, period.Start, period.End)
	if len(sliced) == 0 {
		a.logger.Warn("Period holds no bars, analysing the full series",
			zap.String("period", period.Label),
			zap.Int("bars", len(bars)),
		)

		sliced = bars
		period.Fallback = true
	}

	result := a.Run(sliced, events)
	result.Period = &period

	return result
}

// Slice returns the bars with start <= time < end.
func Slice(bars []types.Bar, start, end time.Time) []types.Bar {
	var out []types.Bar

	for _, b := range bars {
		if !b.Time.Before(start) && b.Time.Before(end) {
			out = append(out, b)
		}
	}

	return out
}
