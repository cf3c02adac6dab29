package types

import "time"

type WindowKind string

const (
	WindowWeekendClosed WindowKind = "weekend_closed"
	WindowHoliday       WindowKind = "holiday"
	WindowCustom        WindowKind = "custom"
)

// ExplainWindow is a UTC interval known in advance to legitimately lack data.
type ExplainWindow struct {
	Start time.Time  `yaml:"start" json:"start"`
	End   time.Time  `yaml:"end" json:"end"`
	Kind  WindowKind `yaml:"kind" json:"kind"`
}

// Overlaps reports whether [start, end) intersects the window.
func (w ExplainWindow) Overlaps(start, end time.Time) bool {
	return start.Before(w.End) && end.After(w.Start)
}

// Contains reports whether t falls in [Start, End).
func (w ExplainWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
