// Package holiday generates FX holiday closure windows offline.
//
// Covered holidays are New Year's Day, Good Friday and Christmas, optionally
// Boxing Day and Easter Monday. Every holiday is a full UTC calendar day.
// Explicit extra closures can be appended as absolute UTC ranges.
package holiday

import (
	"strings"
	"time"

	"github.com/rxtech-lab/argo-quality/internal/types"
)

type Name string

const (
	NewYear      Name = "new_year"
	GoodFriday   Name = "good_friday"
	EasterMonday Name = "easter_monday"
	Christmas    Name = "christmas"
	BoxingDay    Name = "boxing_day"
)

const (
	ModeMinimal  = "minimal"
	ModeExtended = "extended"
)

// closureLayout is the only accepted timestamp form for extra closures.
const closureLayout = "2006-01-02T15:04:05Z"

var (
	minimalSet  = []Name{Christmas, NewYear, GoodFriday}
	extendedSet = []Name{BoxingDay, EasterMonday}
)

// Policy selects which holidays are closed.
type Policy struct {
	Mode     string
	Include  []string
	Extended bool
}

// Names resolves the effective holiday set. A non-empty Include list wins;
// otherwise the minimal set is used, widened by the extended set when the
// mode is "extended" or Extended is set.
func (p Policy) Names() map[Name]bool {
	names := make(map[Name]bool)

	for _, item := range p.Include {
		item = strings.TrimSpace(item)
		if item != "" {
			names[Name(item)] = true
		}
	}

	if len(names) > 0 {
		return names
	}

	for _, n := range minimalSet {
		names[n] = true
	}

	if strings.EqualFold(p.Mode, ModeExtended) || p.Extended {
		for _, n := range extendedSet {
			names[n] = true
		}
	}

	return names
}

// EasterSunday computes Gregorian Easter with the anonymous
// (Meeus/Jones/Butcher) algorithm. The result is midnight UTC.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func fullDay(t time.Time) types.ExplainWindow {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	return types.ExplainWindow{
		Start: start,
		End:   start.AddDate(0, 0, 1),
		Kind:  types.WindowHoliday,
	}
}

// Windows returns the holiday closure windows of a year followed by the
// valid extra closures. Malformed or empty extra closures are skipped.
func Windows(year int, policy Policy, extraClosures []string) []types.ExplainWindow {
	names := policy.Names()
	easter := EasterSunday(year)

	var windows []types.ExplainWindow

	if names[GoodFriday] {
		windows = append(windows, fullDay(easter.AddDate(0, 0, -2)))
	}

	if names[EasterMonday] {
		windows = append(windows, fullDay(easter.AddDate(0, 0, 1)))
	}

	if names[NewYear] {
		windows = append(windows, fullDay(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)))
	}

	if names[Christmas] {
		windows = append(windows, fullDay(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)))
	}

	if names[BoxingDay] {
		windows = append(windows, fullDay(time.Date(year, time.December, 26, 0, 0, 0, 0, time.UTC)))
	}

	for _, line := range extraClosures {
		if w, ok := ParseClosure(line); ok {
			windows = append(windows, w)
		}
	}

	return windows
}

// ParseClosure parses "YYYY-MM-DDTHH:MM:SSZ -> YYYY-MM-DDTHH:MM:SSZ".
// ok is false when either side is malformed or the end is not after the start.
func ParseClosure(line string) (types.ExplainWindow, bool) {
	parts := strings.Split(line, "->")
	if len(parts) != 2 {
		return types.ExplainWindow{}, false
	}

	return ParseRange(parts[0], parts[1])
}

// ParseRange parses an explicit [start, end) pair in closure timestamp form.
func ParseRange(startToken, endToken string) (types.ExplainWindow, bool) {
	start, err := time.Parse(closureLayout, strings.TrimSpace(startToken))
	if err != nil {
		return types.ExplainWindow{}, false
	}

	end, err := time.Parse(closureLayout, strings.TrimSpace(endToken))
	if err != nil {
		return types.ExplainWindow{}, false
	}

	if !end.After(start) {
		return types.ExplainWindow{}, false
	}

	return types.ExplainWindow{Start: start, End: end, Kind: types.WindowCustom}, true
}
