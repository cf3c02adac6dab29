package gaps

import (
	"github.com/rxtech-lab/argo-quality/internal/types"
)

// Extract returns a gap for every pair of consecutive bars whose distance is
// strictly greater than the nominal spacing of tf. Bars must be sorted
// ascending; the first bar never produces a gap.
func Extract(bars []types.Bar, tf types.Timeframe) []types.Gap {
	result := make([]types.Gap, 0)
	expected := tf.SpacingSeconds()

	for i := 1; i < len(bars); i++ {
		start := bars[i-1].Time
		end := bars[i].Time

		delta := int64(end.Sub(start).Seconds())
		if delta <= expected {
			continue
		}

		result = append(result, types.Gap{
			Start:        start,
			End:          end,
			DeltaSeconds: delta,
		})
	}

	return result
}
