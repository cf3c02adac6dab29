package scoring

import "github.com/rxtech-lab/argo-quality/internal/types"

// Weights holds the share of every component in the total score.
type Weights struct {
	GapMix       float64
	Hotspots     float64
	Extremes     float64
	Monthly      float64
	Sessions     float64
	Calendar     float64
	Completeness float64
}

// Of returns the weight of the named component.
func (w Weights) Of(component string) float64 {
	switch component {
	case types.ComponentGapMix:
		return w.GapMix
	case types.ComponentHotspots:
		return w.Hotspots
	case types.ComponentExtremes:
		return w.Extremes
	case types.ComponentMonthly:
		return w.Monthly
	case types.ComponentSessions:
		return w.Sessions
	case types.ComponentCalendar:
		return w.Calendar
	case types.ComponentCompleteness:
		return w.Completeness
	}

	return 0
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.GapMix + w.Hotspots + w.Extremes + w.Monthly + w.Sessions + w.Calendar + w.Completeness
}

// Targets are the reference levels each component is measured against.
type Targets struct {
	SmallShare        float64
	LongShare         float64
	ExtremeRatePerK   float64
	MonthlyCV         float64
	SessionOther      float64
	LongestGapHoursOK float64
	CalendarCoverage  float64
}

// Params is the per-timeframe scoring table.
type Params struct {
	// SmallMaxSeconds is the upper bound of a "small" gap.
	SmallMaxSeconds int64
	// LongMinSeconds is the lower bound (exclusive) of a "long" gap.
	LongMinSeconds int64
	// ExtremeBarsPerUnit is the bar count the extreme-range rate is expressed per.
	ExtremeBarsPerUnit float64
	Weights            Weights
	Targets            Targets
}

var params = map[types.Timeframe]Params{
	types.TimeframeM1: {
		SmallMaxSeconds:    300,
		LongMinSeconds:     3600,
		ExtremeBarsPerUnit: 10000,
		Weights:            Weights{0.30, 0.20, 0.15, 0.15, 0.10, 0.05, 0.05},
		Targets: Targets{
			SmallShare:        0.40,
			LongShare:         0.20,
			ExtremeRatePerK:   0.5,
			MonthlyCV:         1.0,
			SessionOther:      0.10,
			LongestGapHoursOK: 24,
			CalendarCoverage:  0.10,
		},
	},
	types.TimeframeM5: {
		SmallMaxSeconds:    1800,
		LongMinSeconds:     10800,
		ExtremeBarsPerUnit: 10000,
		Weights:            Weights{0.25, 0.20, 0.15, 0.15, 0.10, 0.05, 0.10},
		Targets: Targets{
			SmallShare:        0.50,
			LongShare:         0.15,
			ExtremeRatePerK:   1.0,
			MonthlyCV:         1.0,
			SessionOther:      0.10,
			LongestGapHoursOK: 24,
			CalendarCoverage:  0.20,
		},
	},
	types.TimeframeH1: {
		SmallMaxSeconds:    21600,
		LongMinSeconds:     86400,
		ExtremeBarsPerUnit: 1000,
		Weights:            Weights{0.20, 0.15, 0.15, 0.15, 0.10, 0.05, 0.20},
		Targets: Targets{
			SmallShare:        0.60,
			LongShare:         0.10,
			ExtremeRatePerK:   1.0,
			MonthlyCV:         1.0,
			SessionOther:      0.10,
			LongestGapHoursOK: 24,
			CalendarCoverage:  0.30,
		},
	},
}

// ParamsFor returns the scoring table of tf. Unsupported timeframes use the
// table of types.DefaultTimeframe.
func ParamsFor(tf types.Timeframe) Params {
	if p, ok := params[tf]; ok {
		return p
	}

	return params[types.DefaultTimeframe]
}
