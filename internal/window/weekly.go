package window

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-quality/internal/types"
)

var weekdayTokens = map[string]time.Weekday{
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
	"Sun": time.Sunday,
}

var weekdayTimePattern = regexp.MustCompile(`^(Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s+(\d{1,2}):(\d{2})$`)

// WeekdayTime is a point in the week, e.g. "Fri 22:00".
type WeekdayTime struct {
	Weekday time.Weekday
	// Minutes since midnight.
	Minutes int
}

// offset returns the distance from Monday 00:00 of the same week.
func (w WeekdayTime) offset() time.Duration {
	days := (int(w.Weekday) + 6) % 7

	return time.Duration(days)*24*time.Hour + time.Duration(w.Minutes)*time.Minute
}

func (w WeekdayTime) String() string {
	return fmt.Sprintf("%s %02d:%02d", w.Weekday.String()[:3], w.Minutes/60, w.Minutes%60)
}

// ParseWeekdayTime parses "<Mon..Sun> HH:MM".
func ParseWeekdayTime(token string) (WeekdayTime, bool) {
	m := weekdayTimePattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return WeekdayTime{}, false
	}

	hh, _ := strconv.Atoi(m[2])
	mm, _ := strconv.Atoi(m[3])

	if hh > 24 || mm > 59 {
		return WeekdayTime{}, false
	}

	return WeekdayTime{Weekday: weekdayTokens[m[1]], Minutes: hh*60 + mm}, true
}

// WeeklySpec is a recurring closed window, start inclusive and end exclusive.
type WeeklySpec struct {
	Start WeekdayTime
	End   WeekdayTime
}

// DefaultWeeklySpec closes the market from Friday 22:00 to Sunday 22:00 UTC.
var DefaultWeeklySpec = WeeklySpec{
	Start: WeekdayTime{Weekday: time.Friday, Minutes: 22 * 60},
	End:   WeekdayTime{Weekday: time.Sunday, Minutes: 22 * 60},
}

// ParseWeeklySpec parses "Fri 22:00 -> Sun 22:00". Malformed input returns
// DefaultWeeklySpec and ok=false.
func ParseWeeklySpec(value string) (WeeklySpec, bool) {
	parts := strings.Split(value, "->")
	if len(parts) != 2 {
		return DefaultWeeklySpec, false
	}

	start, okStart := ParseWeekdayTime(parts[0])
	end, okEnd := ParseWeekdayTime(parts[1])

	if !okStart || !okEnd {
		return DefaultWeeklySpec, false
	}

	return WeeklySpec{Start: start, End: end}, true
}

func (s WeeklySpec) String() string {
	return s.Start.String() + " -> " + s.End.String()
}

// WeeklyWindows builds the recurring windows bracketing a year, stepping a week
// at a time from Dec 25 of the previous year until Jan 5 of the next one.
func WeeklyWindows(year int, spec WeeklySpec) []types.ExplainWindow {
	cursor := time.Date(year-1, time.December, 25, 0, 0, 0, 0, time.UTC)
	stop := time.Date(year+1, time.January, 5, 0, 0, 0, 0, time.UTC)

	var windows []types.ExplainWindow

	for cursor.Before(stop) {
		weekStart := cursor.AddDate(0, 0, -((int(cursor.Weekday()) + 6) % 7))

		start := weekStart.Add(spec.Start.offset())
		end := weekStart.Add(spec.End.offset())

		if !end.After(start) {
			end = end.AddDate(0, 0, 7)
		}

		windows = append(windows, types.ExplainWindow{Start: start, End: end, Kind: types.WindowWeekendClosed})
		cursor = cursor.AddDate(0, 0, 7)
	}

	return windows
}

// Overlaps reports whether [start, end) intersects any window.
func Overlaps(start, end time.Time, windows []types.ExplainWindow) bool {
	for _, w := range windows {
		if w.Overlaps(start, end) {
			return true
		}
	}

	return false
}
