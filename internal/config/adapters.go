package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-quality/internal/holiday"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/rxtech-lab/argo-quality/internal/window"
)

var offsetPattern = regexp.MustCompile(`^(?:UTC)?([+-]?)(\d{1,2})(?::?(\d{2}))?$`)

var knownHolidays = map[holiday.Name]bool{
	holiday.NewYear:      true,
	holiday.GoodFriday:   true,
	holiday.EasterMonday: true,
	holiday.Christmas:    true,
	holiday.BoxingDay:    true,
}

// Timeframe returns the configured timeframe, M5 when unsupported.
func (c Config) Timeframe() types.Timeframe {
	tf, _ := types.ParseTimeframe(c.Runtime.Timeframe)

	return tf
}

// WeeklySpec returns the weekly closure, the default one when malformed.
func (c Config) WeeklySpec() window.WeeklySpec {
	spec, _ := window.ParseWeeklySpec(c.Scoring.Ignore.WeeklyWindowUTC)

	return spec
}

func (c Config) HolidayPolicy() holiday.Policy {
	p := c.Scoring.Ignore.HolidayPolicy

	return holiday.Policy{Mode: p.Mode, Include: p.Include, Extended: p.Extended}
}

// ExtraClosures returns the raw closure lines; malformed lines are skipped downstream.
func (c Config) ExtraClosures() []string {
	return c.Scoring.Ignore.HolidayPolicy.ExtraClosuresUTC
}

// CustomWindows parses dates_utc pairs, dropping malformed entries.
func (c Config) CustomWindows() []types.ExplainWindow {
	windows := make([]types.ExplainWindow, 0, len(c.Scoring.Ignore.DatesUTC))

	for _, pair := range c.Scoring.Ignore.DatesUTC {
		if len(pair) != 2 {
			continue
		}

		if w, ok := holiday.ParseRange(pair[0], pair[1]); ok {
			windows = append(windows, w)
		}
	}

	return windows
}

// TaggerConfig bundles the inputs of the window tagger.
func (c Config) TaggerConfig() window.Config {
	return window.Config{
		Weekly:        c.WeeklySpec(),
		Holidays:      c.HolidayPolicy(),
		ExtraClosures: c.ExtraClosures(),
		Custom:        c.CustomWindows(),
	}
}

// Tolerance returns the calendar matching tolerance.
func (c Config) Tolerance() time.Duration {
	if c.Calendar.ToleranceSeconds < 0 {
		return 0
	}

	return time.Duration(c.Calendar.ToleranceSeconds) * time.Second
}

// SourceOffset returns the fixed offset of naive input timestamps from UTC.
// Unparseable values yield zero.
func (c Config) SourceOffset() time.Duration {
	offset, _ := ParseSourceOffset(c.Runtime.SourceTZ)

	return offset
}

// ParseSourceOffset parses UTC aliases, EST_FIXED, [UTC]±HH[[:]MM] or a plain
// minute count. An empty value is UTC.
func ParseSourceOffset(value string) (time.Duration, bool) {
	v := strings.ToUpper(strings.Trim(strings.TrimSpace(value), `"'`))

	switch v {
	case "", "UTC", "Z", "+0", "+00:00", "UTC+0", "UTC+00:00":
		return 0, true
	case "EST_FIXED", "EST", "UTC-5", "-5", "+(-5)":
		return -5 * time.Hour, true
	}

	if m := offsetPattern.FindStringSubmatch(v); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0

		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}

		total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
		if m[1] == "-" {
			total = -total
		}

		return total, true
	}

	if minutes, err := strconv.Atoi(v); err == nil {
		return time.Duration(minutes) * time.Minute, true
	}

	return 0, false
}

// Warnings lists every value that an adapter replaced by its default or skipped.
func (c Config) Warnings() []string {
	var warnings []string

	if _, ok := types.ParseTimeframe(c.Runtime.Timeframe); !ok {
		warnings = append(warnings, fmt.Sprintf("unsupported timeframe %q, using %s", c.Runtime.Timeframe, types.DefaultTimeframe))
	}

	if _, ok := ParseSourceOffset(c.Runtime.SourceTZ); !ok {
		warnings = append(warnings, fmt.Sprintf("unrecognised source_tz %q, assuming UTC", c.Runtime.SourceTZ))
	}

	if _, ok := window.ParseWeeklySpec(c.Scoring.Ignore.WeeklyWindowUTC); !ok {
		warnings = append(warnings, fmt.Sprintf("malformed weekly_window_utc %q, using %s", c.Scoring.Ignore.WeeklyWindowUTC, window.DefaultWeeklySpec))
	}

	policy := c.Scoring.Ignore.HolidayPolicy
	if mode := strings.ToLower(policy.Mode); mode != "" && mode != holiday.ModeMinimal && mode != holiday.ModeExtended {
		warnings = append(warnings, fmt.Sprintf("unknown fx_holiday_policy mode %q, treated as %s", policy.Mode, holiday.ModeMinimal))
	}

	for _, name := range policy.Include {
		if !knownHolidays[holiday.Name(strings.TrimSpace(name))] {
			warnings = append(warnings, fmt.Sprintf("unknown holiday %q ignored", name))
		}
	}

	for _, line := range policy.ExtraClosuresUTC {
		if _, ok := holiday.ParseClosure(line); !ok {
			warnings = append(warnings, fmt.Sprintf("malformed extra closure %q ignored", line))
		}
	}

	for _, pair := range c.Scoring.Ignore.DatesUTC {
		if len(pair) != 2 {
			warnings = append(warnings, fmt.Sprintf("dates_utc entry %v must hold a start and an end", pair))

			continue
		}

		if _, ok := holiday.ParseRange(pair[0], pair[1]); !ok {
			warnings = append(warnings, fmt.Sprintf("malformed dates_utc range %v ignored", pair))
		}
	}

	return warnings
}
