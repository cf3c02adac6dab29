package analyzer

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-quality/pkg/errors"
)

// QuarterBounds returns the period covering quarter q (1-4) of year.
func QuarterBounds(year, q int) (Period, error) {
	if q < 1 || q > 4 {
		return Period{}, errors.Newf(errors.ErrCodeInvalidPeriod, "quarter must be between 1 and 4, got %d", q)
	}

	start := time.Date(year, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, time.UTC)

	return Period{
		Label: fmt.Sprintf("%d-Q%d", year, q),
		Start: start,
		End:   start.AddDate(0, 3, 0),
	}, nil
}

// MonthBounds returns the period covering month (1-12) of year.
func MonthBounds(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, errors.Newf(errors.ErrCodeInvalidPeriod, "month must be between 1 and 12, got %d", month)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	return Period{
		Label: start.Format("2006-01"),
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}, nil
}

// ParseMonth parses "YYYY-MM" into a month period.
func ParseMonth(value string) (Period, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Period{}, errors.Wrapf(errors.ErrCodeInvalidPeriod, err, "invalid month %q, expected YYYY-MM", value)
	}

	return MonthBounds(t.Year(), int(t.Month()))
}
