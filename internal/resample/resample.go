package resample

import (
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-quality/internal/types"
)

// Resample aggregates bars into the given timeframe.
//
// M1 returns a copy of the input. Coarser timeframes group rows into
// right-closed periods (end-step, end] labeled with the period end:
// first open, max high, min low, last close and summed volume. Periods
// without rows produce no output, so gaps stay visible to the extractor.
func Resample(bars []types.Bar, tf types.Timeframe) []types.Bar {
	sorted := make([]types.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	if tf == types.TimeframeM1 {
		return sorted
	}

	step := tf.Spacing()
	result := make([]types.Bar, 0, len(sorted)/int(step/time.Minute)+1)

	var (
		current types.Bar
		open    bool
	)

	for _, bar := range sorted {
		label := PeriodEnd(bar.Time, step)

		if open && label.Equal(current.Time) {
			current.High = math.Max(current.High, bar.High)
			current.Low = math.Min(current.Low, bar.Low)
			current.Close = bar.Close
			current.Volume += bar.Volume

			continue
		}

		if open {
			result = append(result, current)
		}

		current = types.Bar{
			Time:   label,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		}
		open = true
	}

	if open {
		result = append(result, current)
	}

	return result
}

// PeriodEnd returns the right edge of the right-closed period containing t.
// A timestamp exactly on a boundary closes the period it ends.
func PeriodEnd(t time.Time, step time.Duration) time.Time {
	t = t.UTC()

	floor := t.Truncate(step)
	if floor.Equal(t) {
		return t
	}

	return floor.Add(step)
}
