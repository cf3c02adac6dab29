package scoring

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quality/internal/calendar"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/stretchr/testify/suite"
)

type ScoringTestSuite struct {
	suite.Suite
	// Tuesday, London session.
	base time.Time
}

func TestScoringSuite(t *testing.T) {
	suite.Run(t, new(ScoringTestSuite))
}

func (suite *ScoringTestSuite) SetupTest() {
	suite.base = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
}

func (suite *ScoringTestSuite) anomaly(start time.Time, deltaSeconds int64) types.TaggedGap {
	return types.TaggedGap{Gap: types.Gap{
		Start:        start,
		End:          start.Add(time.Duration(deltaSeconds) * time.Second),
		DeltaSeconds: deltaSeconds,
	}}
}

func (suite *ScoringTestSuite) flatBars(start time.Time, n int, step time.Duration, rng float64) []types.Bar {
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{Time: start.Add(time.Duration(i) * step), Open: 1, High: 1 + rng, Low: 1, Close: 1}
	}

	return bars
}

func (suite *ScoringTestSuite) TestWeightsSumToOne() {
	for _, tf := range types.AllTimeframes {
		suite.InDelta(1.0, ParamsFor(tf).Weights.Sum(), 1e-9, "timeframe %s", tf)
	}
}

func (suite *ScoringTestSuite) TestParamsFallback() {
	suite.Equal(ParamsFor(types.TimeframeM5), ParamsFor(types.Timeframe("D1")))
	suite.Equal(int64(300), ParamsFor(types.TimeframeM1).SmallMaxSeconds)
	suite.Equal(int64(86400), ParamsFor(types.TimeframeH1).LongMinSeconds)
	suite.Equal(0.30, ParamsFor(types.TimeframeH1).Targets.CalendarCoverage)
}

func (suite *ScoringTestSuite) TestEmptyInput() {
	card := Score(Input{Timeframe: types.TimeframeM5, Calendar: optional.None[calendar.Metrics]()})

	suite.Equal(types.TimeframeM5, card.Timeframe)
	suite.Len(card.Components, len(types.ComponentOrder))

	for i, c := range card.Components {
		suite.Equal(types.ComponentOrder[i], c.Name)
	}

	gapMix, ok := card.Component(types.ComponentGapMix)
	suite.True(ok)
	suite.InDelta(40.0, gapMix.Value, 1e-9)

	for _, name := range types.ComponentOrder[1:] {
		c, _ := card.Component(name)
		suite.InDelta(100.0, c.Value, 1e-9, name)
	}

	suite.InDelta(85.0, card.Total, 1e-9)
}

func (suite *ScoringTestSuite) TestInvalidTimeframeUsesDefault() {
	card := Score(Input{Timeframe: "W1"})
	suite.Equal(types.DefaultTimeframe, card.Timeframe)
}

func (suite *ScoringTestSuite) TestGapMix() {
	p := ParamsFor(types.TimeframeM5)

	tests := []struct {
		name     string
		deltas   []int64
		expected float64
	}{
		{name: "no gaps", deltas: nil, expected: 40},
		{name: "all small", deltas: []int64{600, 900}, expected: 100},
		{name: "all long", deltas: []int64{20000, 30000}, expected: 0},
		{name: "mixed", deltas: []int64{600, 600, 20000, 3600}, expected: 60},
		{name: "medium only", deltas: []int64{3600}, expected: 40},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			var gaps []types.TaggedGap
			for _, d := range tt.deltas {
				gaps = append(gaps, suite.anomaly(suite.base, d))
			}

			suite.InDelta(tt.expected, GapMix(gaps, types.TimeframeM5, p), 1e-9)
		})
	}
}

func (suite *ScoringTestSuite) TestHotspots() {
	other := suite.base.Add(24 * time.Hour)

	suite.InDelta(100.0, Hotspots(nil), 1e-9)
	suite.InDelta(0.0, Hotspots([]types.TaggedGap{
		suite.anomaly(suite.base, 600),
		suite.anomaly(suite.base.Add(10*time.Minute), 600),
	}), 1e-9, "single cell")
	suite.InDelta(100.0, Hotspots([]types.TaggedGap{
		suite.anomaly(suite.base, 600),
		suite.anomaly(other, 600),
	}), 1e-9, "uniform")
	suite.InDelta(800.0/9.0, Hotspots([]types.TaggedGap{
		suite.anomaly(suite.base, 600),
		suite.anomaly(suite.base.Add(5*time.Minute), 600),
		suite.anomaly(other, 600),
	}), 1e-9, "skewed")
}

func (suite *ScoringTestSuite) TestExtremes() {
	suite.Run("no bars", func() {
		suite.InDelta(100.0, Extremes(nil, ParamsFor(types.TimeframeM1)), 1e-9)
	})

	suite.Run("flat ranges", func() {
		suite.InDelta(100.0, Extremes(suite.flatBars(suite.base, 500, time.Minute, 0.5), ParamsFor(types.TimeframeM1)), 1e-9)
	})

	suite.Run("zero p99", func() {
		bars := suite.flatBars(suite.base, 500, time.Minute, 0)
		bars[10].High = 50
		suite.InDelta(100.0, Extremes(bars, ParamsFor(types.TimeframeM1)), 1e-9)
	})

	suite.Run("outlier on M1", func() {
		bars := suite.flatBars(suite.base, 1000, time.Minute, 1)
		bars[500].High = 11
		suite.InDelta(0.0, Extremes(bars, ParamsFor(types.TimeframeM1)), 1e-9)
	})

	suite.Run("outlier on H1", func() {
		bars := suite.flatBars(suite.base, 4000, time.Hour, 1)
		bars[500].High = 11
		suite.InDelta(75.0, Extremes(bars, ParamsFor(types.TimeframeH1)), 1e-9)
	})
}

func (suite *ScoringTestSuite) TestMonthly() {
	p := ParamsFor(types.TimeframeM5)
	jan := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	bars := append(suite.flatBars(jan, 3, time.Hour, 1), suite.flatBars(feb, 3, time.Hour, 1)...)

	suite.InDelta(100.0, Monthly(bars, nil, p), 1e-9, "no gaps")
	suite.InDelta(100.0, Monthly(nil, []types.TaggedGap{suite.anomaly(jan, 600)}, p), 1e-9, "no bars")
	suite.InDelta(100.0, Monthly(bars, []types.TaggedGap{
		suite.anomaly(jan, 600),
		suite.anomaly(feb, 600),
	}, p), 1e-9, "even")
	suite.InDelta(0.0, Monthly(bars, []types.TaggedGap{
		suite.anomaly(jan, 600),
		suite.anomaly(jan.Add(time.Hour), 600),
	}, p), 1e-9, "one month only")
	suite.InDelta(100.0, Monthly(bars, []types.TaggedGap{
		suite.anomaly(jan, 600),
		suite.anomaly(feb, 600),
		suite.anomaly(mar, 600),
	}, p), 1e-9, "months outside the bars are ignored")
}

func (suite *ScoringTestSuite) TestSessions() {
	p := ParamsFor(types.TimeframeM5)
	late := time.Date(2025, 3, 11, 22, 0, 0, 0, time.UTC)

	suite.InDelta(100.0, Sessions(nil, p), 1e-9)
	suite.InDelta(100.0, Sessions([]types.TaggedGap{suite.anomaly(suite.base, 600)}, p), 1e-9)
	suite.InDelta(0.0, Sessions([]types.TaggedGap{suite.anomaly(late, 600)}, p), 1e-9)

	gaps := make([]types.TaggedGap, 0, 20)
	gaps = append(gaps, suite.anomaly(late, 600))

	for i := 0; i < 19; i++ {
		gaps = append(gaps, suite.anomaly(suite.base.Add(time.Duration(i)*time.Minute), 600))
	}

	suite.InDelta(50.0, Sessions(gaps, p), 1e-9)
}

func (suite *ScoringTestSuite) TestCalendar() {
	p := ParamsFor(types.TimeframeM5)

	tests := []struct {
		name     string
		metrics  optional.Option[calendar.Metrics]
		expected float64
	}{
		{name: "no calendar", metrics: optional.None[calendar.Metrics](), expected: 100},
		{name: "no events", metrics: optional.Some(calendar.Metrics{}), expected: 100},
		{name: "half target", metrics: optional.Some(calendar.Metrics{TotalHighEvents: 10, MatchedHighEvents: 1, Coverage: 0.1}), expected: 50},
		{name: "above target", metrics: optional.Some(calendar.Metrics{TotalHighEvents: 2, MatchedHighEvents: 1, Coverage: 0.5}), expected: 100},
		{name: "no coverage", metrics: optional.Some(calendar.Metrics{TotalHighEvents: 4}), expected: 0},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.InDelta(tt.expected, Calendar(tt.metrics, p), 1e-9)
		})
	}
}

func (suite *ScoringTestSuite) TestCompleteness() {
	p := ParamsFor(types.TimeframeH1)

	suite.InDelta(100.0, Completeness(nil, p), 1e-9)
	suite.InDelta(50.0, Completeness([]types.TaggedGap{suite.anomaly(suite.base, 12*3600)}, p), 1e-9)
	suite.InDelta(0.0, Completeness([]types.TaggedGap{
		suite.anomaly(suite.base, 600),
		suite.anomaly(suite.base, 30*3600),
	}, p), 1e-9)
}

func (suite *ScoringTestSuite) TestScoreBoundsAndDeterminism() {
	late := time.Date(2025, 3, 15, 23, 30, 0, 0, time.UTC)
	in := Input{
		Timeframe: types.TimeframeM1,
		Bars:      suite.flatBars(suite.base, 300, time.Minute, 1),
		Anomalies: []types.TaggedGap{
			suite.anomaly(suite.base, 120),
			suite.anomaly(late, 40*3600),
		},
		Calendar: optional.Some(calendar.Metrics{TotalHighEvents: 3, MatchedHighEvents: 0}),
	}

	first := Score(in)
	second := Score(in)
	suite.Equal(first, second)

	var weighted float64

	for _, c := range first.Components {
		suite.GreaterOrEqual(c.Value, 0.0)
		suite.LessOrEqual(c.Value, 100.0)
		weighted += c.Weight * c.Value
	}

	suite.InDelta(weighted, first.Total, 1e-9)
	suite.GreaterOrEqual(first.Total, 0.0)
	suite.LessOrEqual(first.Total, 100.0)

	completeness, _ := first.Component(types.ComponentCompleteness)
	suite.InDelta(0.0, completeness.Value, 1e-9)
	cal, _ := first.Component(types.ComponentCalendar)
	suite.InDelta(0.0, cal.Value, 1e-9)
}
