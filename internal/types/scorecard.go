package types

// Component names in the order they appear on a scorecard.
const (
	ComponentGapMix       = "gap_mix"
	ComponentHotspots     = "hotspots"
	ComponentExtremes     = "extremes"
	ComponentMonthly      = "monthly"
	ComponentSessions     = "sessions"
	ComponentCalendar     = "calendar"
	ComponentCompleteness = "completeness"
)

// ComponentOrder is the fixed order of scorecard components.
var ComponentOrder = []string{
	ComponentGapMix,
	ComponentHotspots,
	ComponentExtremes,
	ComponentMonthly,
	ComponentSessions,
	ComponentCalendar,
	ComponentCompleteness,
}

type ScoreComponent struct {
	Name string `yaml:"name" json:"name"`
	// Weight is the share of this component in the total. Weights of one scorecard sum to 1.
	Weight float64 `yaml:"weight" json:"weight"`
	// Value is the component score in [0, 100].
	Value float64 `yaml:"value" json:"value"`
}

// Scorecard is the weighted data-quality score of one timeframe.
type Scorecard struct {
	Timeframe  Timeframe        `yaml:"timeframe" json:"timeframe"`
	Total      float64          `yaml:"total" json:"total"`
	Components []ScoreComponent `yaml:"components" json:"components"`
}

// Component returns the component with the given name.
func (s Scorecard) Component(name string) (ScoreComponent, bool) {
	for _, c := range s.Components {
		if c.Name == name {
			return c, true
		}
	}

	return ScoreComponent{}, false
}
