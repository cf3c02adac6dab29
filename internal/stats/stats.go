// Package stats builds the descriptive tables that accompany a scorecard:
// gap duration buckets and percentiles, session distribution and the
// monthly rows/gaps table. All functions operate on anomalous gaps only.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-quality/internal/types"
)

// Quantile returns the q-quantile of values with linear interpolation
// between closest ranks. values does not need to be sorted. Empty input yields 0.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))

	if lo == hi {
		return sorted[lo]
	}

	frac := pos - float64(lo)

	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// MonthKey formats t as "YYYY-MM" in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// DurationStats describes the length distribution of anomalous gaps.
type DurationStats struct {
	// Bucket counts: (60,120], (120,300], (300,3600] and >3600 seconds.
	OneToTwoMin   int   `yaml:"one_to_two_min" json:"one_to_two_min"`
	TwoToFiveMin  int   `yaml:"two_to_five_min" json:"two_to_five_min"`
	SixToSixtyMin int   `yaml:"six_to_sixty_min" json:"six_to_sixty_min"`
	OverSixtyMin  int   `yaml:"over_sixty_min" json:"over_sixty_min"`
	P50Seconds    int64 `yaml:"p50_seconds" json:"p50_seconds"`
	P90Seconds    int64 `yaml:"p90_seconds" json:"p90_seconds"`
	P99Seconds    int64 `yaml:"p99_seconds" json:"p99_seconds"`
	MaxSeconds    int64 `yaml:"max_seconds" json:"max_seconds"`
	// Longest is the first gap with the maximum duration, nil without gaps.
	Longest *types.Gap `yaml:"longest,omitempty" json:"longest,omitempty"`
}

// Durations computes bucket counts and percentiles of the gap durations.
func Durations(gaps []types.TaggedGap) DurationStats {
	var result DurationStats
	if len(gaps) == 0 {
		return result
	}

	deltas := make([]float64, 0, len(gaps))

	for i, g := range gaps {
		d := g.DeltaSeconds
		deltas = append(deltas, float64(d))

		switch {
		case d > 60 && d <= 120:
			result.OneToTwoMin++
		case d > 120 && d <= 300:
			result.TwoToFiveMin++
		case d > 300 && d <= 3600:
			result.SixToSixtyMin++
		case d > 3600:
			result.OverSixtyMin++
		}

		if result.Longest == nil || d > result.MaxSeconds {
			longest := gaps[i].Gap
			result.Longest = &longest
			result.MaxSeconds = d
		}
	}

	sort.Float64s(deltas)
	result.P50Seconds = int64(quantileSorted(deltas, 0.50))
	result.P90Seconds = int64(quantileSorted(deltas, 0.90))
	result.P99Seconds = int64(quantileSorted(deltas, 0.99))

	return result
}

// SessionShare is one row of the session distribution.
type SessionShare struct {
	Session string  `yaml:"session" json:"session"`
	Count   int     `yaml:"count" json:"count"`
	Percent float64 `yaml:"percent" json:"percent"`
}

// Sessions counts gap starts per trading session, largest first.
func Sessions(gaps []types.TaggedGap) []SessionShare {
	counts := make(map[string]int)
	for _, g := range gaps {
		counts[SessionLabel(g.Start)]++
	}

	result := make([]SessionShare, 0, len(counts))
	for label, count := range counts {
		result = append(result, SessionShare{
			Session: label,
			Count:   count,
			Percent: 100 * float64(count) / float64(len(gaps)),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}

		return result[i].Session < result[j].Session
	})

	return result
}

// MonthRow is one row of the monthly table.
type MonthRow struct {
	Month string `yaml:"month" json:"month"`
	Rows  int    `yaml:"rows" json:"rows"`
	Gaps  int    `yaml:"gaps" json:"gaps"`
}

// Monthly counts bars and gap starts per calendar month. Months appearing in
// either series are listed in ascending order.
func Monthly(bars []types.Bar, gaps []types.TaggedGap) []MonthRow {
	rows := make(map[string]*MonthRow)

	row := func(key string) *MonthRow {
		r, ok := rows[key]
		if !ok {
			r = &MonthRow{Month: key}
			rows[key] = r
		}

		return r
	}

	for _, b := range bars {
		row(MonthKey(b.Time)).Rows++
	}

	for _, g := range gaps {
		row(MonthKey(g.Start)).Gaps++
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	result := make([]MonthRow, 0, len(keys))
	for _, k := range keys {
		result = append(result, *rows[k])
	}

	return result
}
