package writer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-quality/internal/analyzer"
	"github.com/rxtech-lab/argo-quality/internal/calendar"
	"github.com/rxtech-lab/argo-quality/internal/stats"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/rxtech-lab/argo-quality/internal/version"
	"github.com/rxtech-lab/argo-quality/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Report is the persisted summary of one quality run.
type Report struct {
	RunID      string            `yaml:"run_id" json:"run_id"`
	Version    string            `yaml:"version" json:"version"`
	Source     string            `yaml:"source" json:"source"`
	Timeframes []TimeframeReport `yaml:"timeframes" json:"timeframes"`
}

type TimeframeReport struct {
	Timeframe types.Timeframe  `yaml:"timeframe" json:"timeframe"`
	Period    *analyzer.Period `yaml:"period,omitempty" json:"period,omitempty"`
	Bars      int              `yaml:"bars" json:"bars"`
	// Gaps counts gaps per tag, anomalies under "anomalous".
	Gaps      map[string]int       `yaml:"gaps" json:"gaps"`
	Calendar  *calendar.Metrics    `yaml:"calendar,omitempty" json:"calendar,omitempty"`
	Durations stats.DurationStats  `yaml:"durations" json:"durations"`
	Sessions  []stats.SessionShare `yaml:"sessions" json:"sessions"`
	Monthly   []stats.MonthRow     `yaml:"monthly" json:"monthly"`
	Scorecard types.Scorecard      `yaml:"scorecard" json:"scorecard"`
	// Anomalies lists the unexplained gaps.
	Anomalies []types.TaggedGap `yaml:"anomalies" json:"anomalies"`
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.New().String()
}

// NewReport summarises results. Scores and shares are rounded to two decimals.
func NewReport(runID, source string, results []*analyzer.Result) Report {
	report := Report{
		RunID:      runID,
		Version:    version.GetVersion(),
		Source:     source,
		Timeframes: make([]TimeframeReport, 0, len(results)),
	}

	for _, r := range results {
		if r == nil {
			continue
		}

		tf := TimeframeReport{
			Timeframe: r.Timeframe,
			Period:    r.Period,
			Bars:      r.Bars,
			Gaps:      r.CountByReason(),
			Durations: r.Durations,
			Sessions:  make([]stats.SessionShare, len(r.Sessions)),
			Monthly:   r.Monthly,
			Scorecard: roundScorecard(r.Scorecard),
			Anomalies: r.Anomalies,
		}

		if r.CalendarAvailable {
			metrics := r.Calendar
			metrics.Coverage = Round(metrics.Coverage, 4)
			tf.Calendar = &metrics
		}

		for i, s := range r.Sessions {
			s.Percent = Round(s.Percent, 2)
			tf.Sessions[i] = s
		}

		report.Timeframes = append(report.Timeframes, tf)
	}

	return report
}

// WriteReport writes the report as JSON when path ends in .json, YAML otherwise.
func WriteReport(path string, report Report) error {
	var (
		data []byte
		err  error
	)

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = yaml.Marshal(report)
	}

	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to marshal report", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write report to %s", path)
	}

	return nil
}

// Round rounds half away from zero to places decimals.
func Round(value float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(value).Round(places).Float64()

	return f
}

func roundScorecard(card types.Scorecard) types.Scorecard {
	out := types.Scorecard{
		Timeframe:  card.Timeframe,
		Total:      Round(card.Total, 2),
		Components: make([]types.ScoreComponent, len(card.Components)),
	}

	for i, c := range card.Components {
		out.Components[i] = types.ScoreComponent{
			Name:   c.Name,
			Weight: c.Weight,
			Value:  Round(c.Value, 2),
		}
	}

	return out
}
