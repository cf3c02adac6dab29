package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quality/internal/types"
)

type DataSource interface {
	// Initialize exposes the bar file at path (Parquet or CSV) as the market_data view.
	Initialize(path string) error
	// ReadAll yields bars in ascending time order. start is inclusive, end is exclusive.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// Count returns the number of bars in the range.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// TimeRange returns the first and last bar timestamps.
	TimeRange() (time.Time, time.Time, error)
	// Close closes the data source and releases any resources
	Close() error
}

// ReadBars drains ReadAll into a slice.
func ReadBars(ds DataSource, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}
