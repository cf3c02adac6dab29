package window

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-quality/internal/holiday"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/stretchr/testify/suite"
)

type WindowTestSuite struct {
	suite.Suite
}

func TestWindowSuite(t *testing.T) {
	suite.Run(t, new(WindowTestSuite))
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func gap(start, end time.Time) types.Gap {
	return types.Gap{Start: start, End: end, DeltaSeconds: int64(end.Sub(start).Seconds())}
}

func (suite *WindowTestSuite) tag(cfg Config, gaps ...types.Gap) []types.TaggedGap {
	return NewTaggerForGaps(gaps, cfg, nil).Tag(gaps)
}

func (suite *WindowTestSuite) TestParseWeekdayTime() {
	wt, ok := ParseWeekdayTime(" Fri 22:00 ")
	suite.True(ok)
	suite.Equal(time.Friday, wt.Weekday)
	suite.Equal(22*60, wt.Minutes)
	suite.Equal("Fri 22:00", wt.String())

	wt, ok = ParseWeekdayTime("Mon 7:05")
	suite.True(ok)
	suite.Equal(7*60+5, wt.Minutes)

	for _, token := range []string{"Friday 22:00", "Fri 22", "Fri 22:60", "fri 22:00", ""} {
		_, ok := ParseWeekdayTime(token)
		suite.False(ok, token)
	}
}

func (suite *WindowTestSuite) TestParseWeeklySpecFallback() {
	spec, ok := ParseWeeklySpec("Sat 00:00 -> Mon 00:00")
	suite.True(ok)
	suite.Equal("Sat 00:00 -> Mon 00:00", spec.String())

	spec, ok = ParseWeeklySpec("Fri 22:00 to Sun 22:00")
	suite.False(ok)
	suite.Equal(DefaultWeeklySpec, spec)

	spec, ok = ParseWeeklySpec("Fri 22:00 -> Someday 22:00")
	suite.False(ok)
	suite.Equal(DefaultWeeklySpec, spec)
}

func (suite *WindowTestSuite) TestWeeklyWindowsBracketYear() {
	windows := WeeklyWindows(2025, DefaultWeeklySpec)
	suite.Require().NotEmpty(windows)

	first := windows[0]
	suite.Equal(at(2024, time.December, 27, 22, 0), first.Start)
	suite.Equal(at(2024, time.December, 29, 22, 0), first.End)

	last := windows[len(windows)-1]
	suite.True(last.End.After(at(2026, time.January, 1, 0, 0)))

	for i, w := range windows {
		suite.Equal(types.WindowWeekendClosed, w.Kind)
		suite.Equal(48*time.Hour, w.End.Sub(w.Start))
		suite.Equal(time.Friday, w.Start.Weekday())

		if i > 0 {
			suite.Equal(7*24*time.Hour, w.Start.Sub(windows[i-1].Start))
		}
	}
}

func (suite *WindowTestSuite) TestWeeklyWindowsWrapAround() {
	spec, _ := ParseWeeklySpec("Sat 00:00 -> Mon 00:00")
	windows := WeeklyWindows(2025, spec)

	for _, w := range windows {
		suite.Equal(time.Saturday, w.Start.Weekday())
		suite.Equal(time.Monday, w.End.Weekday())
		suite.Equal(48*time.Hour, w.End.Sub(w.Start))
	}
}

func (suite *WindowTestSuite) TestSaturdayGapIsWeekend() {
	tagged := suite.tag(DefaultConfig(), gap(at(2024, time.December, 21, 10, 0), at(2024, time.December, 21, 13, 0)))
	suite.Equal(types.ReasonWeekendClosed, tagged[0].Reason)
	suite.False(tagged[0].Anomalous())
}

func (suite *WindowTestSuite) TestTuesdayGapIsAnomalous() {
	tagged := suite.tag(DefaultConfig(), gap(at(2025, time.March, 11, 10, 0), at(2025, time.March, 11, 12, 0)))
	suite.Equal(types.ReasonNone, tagged[0].Reason)
	suite.True(tagged[0].Anomalous())
}

func (suite *WindowTestSuite) TestOverlapBoundaries() {
	// Ends exactly when the weekly window opens: no overlap.
	touching := gap(at(2025, time.March, 14, 21, 0), at(2025, time.March, 14, 22, 0))
	// Crosses into the window.
	crossing := gap(at(2025, time.March, 14, 21, 0), at(2025, time.March, 14, 22, 5))
	// Spans the whole weekend.
	spanning := gap(at(2025, time.March, 14, 21, 55), at(2025, time.March, 16, 22, 5))

	tagged := suite.tag(DefaultConfig(), touching, crossing, spanning)
	suite.Equal(types.ReasonNone, tagged[0].Reason)
	suite.Equal(types.ReasonWeekendClosed, tagged[1].Reason)
	suite.Equal(types.ReasonWeekendClosed, tagged[2].Reason)
}

func (suite *WindowTestSuite) TestHolidayGap() {
	// Good Friday 2025 (Easter is April 20).
	tagged := suite.tag(DefaultConfig(), gap(at(2025, time.April, 18, 9, 0), at(2025, time.April, 18, 11, 0)))
	suite.Equal(types.ReasonHoliday, tagged[0].Reason)
}

func (suite *WindowTestSuite) TestWeekendWinsOverHoliday() {
	// Christmas 2021 was a Saturday.
	tagged := suite.tag(DefaultConfig(), gap(at(2021, time.December, 25, 10, 0), at(2021, time.December, 25, 12, 0)))
	suite.Equal(types.ReasonWeekendClosed, tagged[0].Reason)
}

func (suite *WindowTestSuite) TestExtendedPolicy() {
	boxingDay := gap(at(2024, time.December, 26, 3, 0), at(2024, time.December, 26, 4, 0))

	tagged := suite.tag(DefaultConfig(), boxingDay)
	suite.Equal(types.ReasonNone, tagged[0].Reason)

	cfg := DefaultConfig()
	cfg.Holidays = holiday.Policy{Mode: holiday.ModeExtended}
	tagged = suite.tag(cfg, boxingDay)
	suite.Equal(types.ReasonHoliday, tagged[0].Reason)
}

func (suite *WindowTestSuite) TestExtraClosuresAreHolidays() {
	cfg := DefaultConfig()
	cfg.ExtraClosures = []string{"2025-05-26T00:00:00Z -> 2025-05-27T00:00:00Z", "garbage"}

	tagged := suite.tag(cfg, gap(at(2025, time.May, 26, 14, 0), at(2025, time.May, 26, 15, 0)))
	suite.Equal(types.ReasonHoliday, tagged[0].Reason)
}

func (suite *WindowTestSuite) TestCustomRunsLast() {
	cfg := DefaultConfig()
	cfg.Custom = []types.ExplainWindow{
		{Start: at(2025, time.March, 11, 0, 0), End: at(2025, time.March, 12, 0, 0), Kind: types.WindowCustom},
		{Start: at(2025, time.April, 18, 0, 0), End: at(2025, time.April, 19, 0, 0), Kind: types.WindowCustom},
	}

	tagged := suite.tag(cfg,
		gap(at(2025, time.March, 11, 10, 0), at(2025, time.March, 11, 12, 0)),
		gap(at(2025, time.April, 18, 9, 0), at(2025, time.April, 18, 11, 0)),
	)
	suite.Equal(types.ReasonCustom, tagged[0].Reason)
	suite.Equal(types.ReasonHoliday, tagged[1].Reason)
}

func (suite *WindowTestSuite) TestYearBoundaryGap() {
	// New Year's Day 2025 is a Wednesday; the gap starts on Dec 31.
	tagged := suite.tag(DefaultConfig(), gap(at(2024, time.December, 31, 23, 0), at(2025, time.January, 1, 2, 0)))
	suite.Equal(types.ReasonHoliday, tagged[0].Reason)
	suite.Equal([]int{2024, 2025}, YearsOf([]types.Gap{tagged[0].Gap}))
}

func (suite *WindowTestSuite) TestTaggingIsIdempotentAndOrdered() {
	calls := 0
	rules := []Rule{
		{Reason: types.ReasonWeekendClosed, Match: func(types.Gap) bool { return true }},
		{Reason: types.ReasonHoliday, Match: func(types.Gap) bool { calls++; return true }},
	}

	tagged := NewTagger(rules, nil).Tag([]types.Gap{gap(at(2025, time.March, 11, 10, 0), at(2025, time.March, 11, 12, 0))})
	suite.Equal(types.ReasonWeekendClosed, tagged[0].Reason)
	suite.Equal(0, calls)
}

func (suite *WindowTestSuite) TestAnomalies() {
	tagged := []types.TaggedGap{
		{Reason: types.ReasonNone},
		{Reason: types.ReasonHoliday},
		{Reason: types.ReasonNone},
	}
	suite.Len(Anomalies(tagged), 2)
	suite.NotNil(Anomalies(nil))
}

func (suite *WindowTestSuite) TestEmptyGaps() {
	suite.Empty(NewTaggerForGaps(nil, DefaultConfig(), nil).Tag(nil))
	suite.Empty(YearsOf(nil))
}
