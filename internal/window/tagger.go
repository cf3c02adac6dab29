package window

import (
	"sort"

	"github.com/rxtech-lab/argo-quality/internal/holiday"
	"github.com/rxtech-lab/argo-quality/internal/logger"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"go.uber.org/zap"
)

// Rule tags a gap with Reason when Match returns true.
type Rule struct {
	Reason types.Reason
	Match  func(gap types.Gap) bool
}

// OverlapRule matches gaps that intersect any of the windows.
func OverlapRule(reason types.Reason, windows []types.ExplainWindow) Rule {
	return Rule{
		Reason: reason,
		Match: func(gap types.Gap) bool {
			return Overlaps(gap.Start, gap.End, windows)
		},
	}
}

// Config holds the typed inputs of the tagger.
type Config struct {
	Weekly   WeeklySpec
	Holidays holiday.Policy
	// ExtraClosures are "<ISO>Z -> <ISO>Z" ranges folded into the holiday set.
	ExtraClosures []string
	// Custom windows are checked after holidays and tag gaps as custom.
	Custom []types.ExplainWindow
}

// DefaultConfig uses the default weekly window and minimal holiday policy.
func DefaultConfig() Config {
	return Config{Weekly: DefaultWeeklySpec}
}

// Tagger classifies gaps with an ordered rule list. The first matching rule
// wins and a tagged gap is never evaluated again.
type Tagger struct {
	rules  []Rule
	logger *logger.Logger
}

func NewTagger(rules []Rule, log *logger.Logger) *Tagger {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Tagger{rules: rules, logger: log}
}

// NewTaggerForGaps builds the weekend, holiday and custom rules for every
// year touched by the gaps.
func NewTaggerForGaps(gaps []types.Gap, cfg Config, log *logger.Logger) *Tagger {
	return NewTagger(BuildRules(YearsOf(gaps), cfg), log)
}

// BuildRules returns the rules in priority order: weekend_closed, holiday, custom.
func BuildRules(years []int, cfg Config) []Rule {
	var weekly, holidays []types.ExplainWindow

	for _, year := range years {
		weekly = append(weekly, WeeklyWindows(year, cfg.Weekly)...)
		holidays = append(holidays, holiday.Windows(year, cfg.Holidays, nil)...)
	}

	for _, line := range cfg.ExtraClosures {
		if w, ok := holiday.ParseClosure(line); ok {
			holidays = append(holidays, w)
		}
	}

	rules := []Rule{
		OverlapRule(types.ReasonWeekendClosed, weekly),
		OverlapRule(types.ReasonHoliday, holidays),
	}

	if len(cfg.Custom) > 0 {
		rules = append(rules, OverlapRule(types.ReasonCustom, cfg.Custom))
	}

	return rules
}

// YearsOf returns the sorted calendar years spanned by the gaps.
func YearsOf(gaps []types.Gap) []int {
	seen := make(map[int]bool)

	for _, g := range gaps {
		for y := g.Start.UTC().Year(); y <= g.End.UTC().Year(); y++ {
			seen[y] = true
		}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}

	sort.Ints(years)

	return years
}

// Tag applies the rules to every gap in order.
func (t *Tagger) Tag(gaps []types.Gap) []types.TaggedGap {
	tagged := make([]types.TaggedGap, len(gaps))
	for i, g := range gaps {
		tagged[i] = types.TaggedGap{Gap: g}
	}

	for _, rule := range t.rules {
		matched := 0

		for i := range tagged {
			if tagged[i].Reason != types.ReasonNone {
				continue
			}

			if rule.Match(tagged[i].Gap) {
				tagged[i].Reason = rule.Reason
				matched++
			}
		}

		t.logger.Debug("Applied tagging rule",
			zap.String("reason", string(rule.Reason)),
			zap.Int("matched", matched))
	}

	return tagged
}

// Anomalies returns the gaps no rule explained.
func Anomalies(tagged []types.TaggedGap) []types.TaggedGap {
	result := make([]types.TaggedGap, 0)

	for _, g := range tagged {
		if g.Anomalous() {
			result = append(result, g)
		}
	}

	return result
}
