package types

import "time"

// Reason explains why a gap is expected. ReasonNone marks an anomalous gap.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonWeekendClosed Reason = "weekend/closed-hours"
	ReasonHoliday       Reason = "holiday"
	ReasonCustom        Reason = "custom"
)

// Gap is the interval between two consecutive bars whose distance exceeds
// the nominal spacing of the timeframe.
type Gap struct {
	// Start is the timestamp of the bar before the gap.
	Start time.Time `yaml:"start" json:"start"`
	// End is the timestamp of the bar after the gap.
	End time.Time `yaml:"end" json:"end"`
	// DeltaSeconds is End - Start in seconds.
	DeltaSeconds int64 `yaml:"delta_seconds" json:"delta_seconds"`
}

// Duration returns the gap length.
func (g Gap) Duration() time.Duration {
	return time.Duration(g.DeltaSeconds) * time.Second
}

// TaggedGap is a gap after window tagging and calendar matching.
type TaggedGap struct {
	Gap `yaml:",inline"`
	// Reason is ReasonNone until an explainable window overlaps the gap.
	Reason Reason `yaml:"reason,omitempty" json:"reason,omitempty"`
	// CalendarHigh is set when a high-impact event falls near the gap.
	CalendarHigh bool `yaml:"calendar_high" json:"calendar_high"`
}

// Anomalous reports whether no explainable window matched the gap.
func (g TaggedGap) Anomalous() bool {
	return g.Reason == ReasonNone
}
