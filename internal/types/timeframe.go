package types

import (
	"strings"
	"time"
)

type Timeframe string

const (
	TimeframeM1 Timeframe = "M1"
	TimeframeM5 Timeframe = "M5"
	TimeframeH1 Timeframe = "H1"
)

// DefaultTimeframe is used whenever a configured timeframe token is not supported.
const DefaultTimeframe = TimeframeM5

// AllTimeframes lists the supported timeframes from finest to coarsest.
var AllTimeframes = []Timeframe{TimeframeM1, TimeframeM5, TimeframeH1}

var timeframeSpacing = map[Timeframe]time.Duration{
	TimeframeM1: time.Minute,
	TimeframeM5: 5 * time.Minute,
	TimeframeH1: time.Hour,
}

// ParseTimeframe parses a timeframe token case-insensitively.
// Unsupported tokens fall back to DefaultTimeframe and ok is false.
func ParseTimeframe(token string) (tf Timeframe, ok bool) {
	tf = Timeframe(strings.ToUpper(strings.TrimSpace(token)))
	if _, found := timeframeSpacing[tf]; !found {
		return DefaultTimeframe, false
	}

	return tf, true
}

// Valid reports whether the timeframe is one of the supported values.
func (t Timeframe) Valid() bool {
	_, ok := timeframeSpacing[t]

	return ok
}

// Spacing returns the nominal distance between two consecutive bars.
// Unknown timeframes use the spacing of DefaultTimeframe.
func (t Timeframe) Spacing() time.Duration {
	if d, ok := timeframeSpacing[t]; ok {
		return d
	}

	return timeframeSpacing[DefaultTimeframe]
}

// SpacingSeconds returns Spacing in whole seconds.
func (t Timeframe) SpacingSeconds() int64 {
	return int64(t.Spacing() / time.Second)
}

func (t Timeframe) String() string {
	return string(t)
}
