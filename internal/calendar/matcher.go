package calendar

import (
	"sort"
	"time"

	"github.com/rxtech-lab/argo-quality/internal/types"
)

// DefaultTolerance is the symmetric look-around used when matching events to gaps.
const DefaultTolerance = 60 * time.Second

// Metrics summarises how many high-impact events coincide with anomalous gaps.
type Metrics struct {
	TotalHighEvents   int     `yaml:"total_high_events" json:"total_high_events"`
	MatchedHighEvents int     `yaml:"matched_high_events" json:"matched_high_events"`
	Coverage          float64 `yaml:"coverage" json:"coverage"`
}

// Available reports whether any high-impact event was supplied.
func (m Metrics) Available() bool {
	return m.TotalHighEvents > 0
}

// Match flags every gap whose [start-tolerance, end+tolerance] contains a
// high-impact event. Events only count toward coverage when at least one
// anomalous gap matches them. The input slice is not modified.
func Match(tagged []types.TaggedGap, events []types.HighImpactEvent, tolerance time.Duration) ([]types.TaggedGap, Metrics) {
	out := make([]types.TaggedGap, len(tagged))
	copy(out, tagged)

	for i := range out {
		out[i].CalendarHigh = false
	}

	metrics := Metrics{TotalHighEvents: len(events)}
	if len(events) == 0 || len(out) == 0 {
		return out, metrics
	}

	times := make([]time.Time, len(events))
	for i, e := range events {
		times[i] = e.Time.UTC()
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	// Sweep: gaps ordered by start, events ascending. Gaps that ended before
	// the current event (minus tolerance) can never match a later event.
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return out[order[a]].Start.Before(out[order[b]].Start)
	})

	matched := make(map[int64]bool)
	first := 0

	for _, t := range times {
		for first < len(order) && out[order[first]].End.Add(tolerance).Before(t) {
			first++
		}

		for j := first; j < len(order); j++ {
			g := &out[order[j]]
			if g.Start.Add(-tolerance).After(t) {
				break
			}

			if g.End.Add(tolerance).Before(t) {
				continue
			}

			g.CalendarHigh = true

			if g.Anomalous() {
				matched[t.UnixNano()] = true
			}
		}
	}

	metrics.MatchedHighEvents = len(matched)
	metrics.Coverage = float64(metrics.MatchedHighEvents) / float64(metrics.TotalHighEvents)

	return out, metrics
}
