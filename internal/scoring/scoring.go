// Package scoring turns anomalous gaps, bar ranges and calendar coverage
// into a weighted seven-component scorecard.
package scoring

import (
	"math"
	"sort"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quality/internal/calendar"
	"github.com/rxtech-lab/argo-quality/internal/stats"
	"github.com/rxtech-lab/argo-quality/internal/types"
)

// extremeMultiple is how many p99 ranges a bar must span to count as extreme.
const extremeMultiple = 5.0

// Input is everything the scorecard is computed from.
type Input struct {
	Timeframe types.Timeframe
	// Bars are the resampled bars of the timeframe.
	Bars []types.Bar
	// Anomalies are the gaps left unexplained by the window tagger.
	Anomalies []types.TaggedGap
	// Calendar is None when no calendar was supplied.
	Calendar optional.Option[calendar.Metrics]
}

// Score computes the scorecard. It never fails: empty inputs produce the
// neutral value of each component.
func Score(in Input) types.Scorecard {
	tf := in.Timeframe
	if !tf.Valid() {
		tf = types.DefaultTimeframe
	}

	p := ParamsFor(tf)

	values := map[string]float64{
		types.ComponentGapMix:       GapMix(in.Anomalies, tf, p),
		types.ComponentHotspots:     Hotspots(in.Anomalies),
		types.ComponentExtremes:     Extremes(in.Bars, p),
		types.ComponentMonthly:      Monthly(in.Bars, in.Anomalies, p),
		types.ComponentSessions:     Sessions(in.Anomalies, p),
		types.ComponentCalendar:     Calendar(in.Calendar, p),
		types.ComponentCompleteness: Completeness(in.Anomalies, p),
	}

	card := types.Scorecard{
		Timeframe:  tf,
		Components: make([]types.ScoreComponent, 0, len(types.ComponentOrder)),
	}

	for _, name := range types.ComponentOrder {
		v := clamp(values[name])
		w := p.Weights.Of(name)
		card.Components = append(card.Components, types.ScoreComponent{Name: name, Weight: w, Value: v})
		card.Total += w * v
	}

	card.Total = clamp(card.Total)

	return card
}

// GapMix rewards a high share of small gaps and penalises a high share of long ones.
func GapMix(anomalies []types.TaggedGap, tf types.Timeframe, p Params) float64 {
	nominal := tf.SpacingSeconds()

	var small, long int

	for _, g := range anomalies {
		if g.DeltaSeconds > nominal && g.DeltaSeconds <= p.SmallMaxSeconds {
			small++
		}

		if g.DeltaSeconds > p.LongMinSeconds {
			long++
		}
	}

	var pSmall, pLong float64
	if n := len(anomalies); n > 0 {
		pSmall = float64(small) / float64(n)
		pLong = float64(long) / float64(n)
	}

	compSmall := math.Min(1, ratio(pSmall, p.Targets.SmallShare))
	compLong := math.Max(0, 1-math.Min(1, ratio(pLong, p.Targets.LongShare)))

	return 100 * (0.6*compSmall + 0.4*compLong)
}

type hotspotCell struct {
	weekday int
	hour    int
}

// Hotspots scores how evenly gap starts spread over (weekday, hour) cells,
// using the normalised collision index of the cell distribution.
func Hotspots(anomalies []types.TaggedGap) float64 {
	if len(anomalies) == 0 {
		return 100
	}

	counts := make(map[hotspotCell]int)
	for _, g := range anomalies {
		s := g.Start.UTC()
		counts[hotspotCell{weekday: int(s.Weekday()), hour: s.Hour()}]++
	}

	cells := make([]hotspotCell, 0, len(counts))
	for c := range counts {
		cells = append(cells, c)
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].weekday != cells[j].weekday {
			return cells[i].weekday < cells[j].weekday
		}

		return cells[i].hour < cells[j].hour
	})

	n := float64(len(anomalies))

	var h float64

	for _, c := range cells {
		share := float64(counts[c]) / n
		h += share * share
	}

	normalized := 1.0
	if c := float64(len(cells)); c > 1 {
		normalized = (h - 1/c) / (1 - 1/c)
	}

	return 100 * (1 - normalized)
}

// Extremes scores the rate of bars whose range exceeds five times the p99 range.
func Extremes(bars []types.Bar, p Params) float64 {
	if len(bars) == 0 {
		return 100
	}

	ranges := make([]float64, len(bars))
	for i, b := range bars {
		ranges[i] = b.Range()
	}

	p99 := stats.Quantile(ranges, 0.99)

	var extreme int

	if p99 > 0 {
		for _, r := range ranges {
			if r > extremeMultiple*p99 {
				extreme++
			}
		}
	}

	rate := float64(extreme) / (float64(len(bars)) / p.ExtremeBarsPerUnit)

	return 100 * (1 - math.Min(1, ratio(rate, p.Targets.ExtremeRatePerK)))
}

// Monthly scores the stability of anomalous gap counts across the months
// covered by the bars. Months without gaps count as zero.
func Monthly(bars []types.Bar, anomalies []types.TaggedGap, p Params) float64 {
	counts := make(map[string]float64)
	for _, b := range bars {
		counts[stats.MonthKey(b.Time)] = 0
	}

	for _, g := range anomalies {
		key := stats.MonthKey(g.Start)
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}

	cv := coefficientOfVariation(counts)

	return 100 * (1 - math.Min(1, ratio(cv, p.Targets.MonthlyCV)))
}

// Sessions penalises gaps starting outside the main trading sessions.
func Sessions(anomalies []types.TaggedGap, p Params) float64 {
	var other int

	for _, g := range anomalies {
		if stats.SessionLabel(g.Start) == stats.SessionOther {
			other++
		}
	}

	var share float64
	if len(anomalies) > 0 {
		share = float64(other) / float64(len(anomalies))
	}

	return 100 * (1 - math.Min(1, ratio(share, p.Targets.SessionOther)))
}

// Calendar rewards coverage of high-impact events by anomalous gaps.
// Without a calendar or without events the component is neutral.
func Calendar(metrics optional.Option[calendar.Metrics], p Params) float64 {
	m, err := metrics.Take()
	if err != nil || !m.Available() {
		return 100
	}

	return 100 * math.Min(1, ratio(m.Coverage, p.Targets.CalendarCoverage))
}

// Completeness penalises the longest anomalous gap relative to the acceptable hours.
func Completeness(anomalies []types.TaggedGap, p Params) float64 {
	var longest int64

	for _, g := range anomalies {
		if g.DeltaSeconds > longest {
			longest = g.DeltaSeconds
		}
	}

	hours := float64(longest) / 3600

	return 100 * (1 - math.Min(1, ratio(hours, p.Targets.LongestGapHoursOK)))
}

func coefficientOfVariation(counts map[string]float64) float64 {
	if len(counts) == 0 {
		return 0
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var sum float64
	for _, k := range keys {
		sum += counts[k]
	}

	mean := sum / float64(len(keys))
	if mean <= 0 {
		return 0
	}

	var sq float64

	for _, k := range keys {
		d := counts[k] - mean
		sq += d * d
	}

	return math.Sqrt(sq/float64(len(keys))) / mean
}

// ratio divides with a zero-denominator guard.
func ratio(value, target float64) float64 {
	if target <= 0 {
		return 0
	}

	return value / target
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	}

	return v
}
