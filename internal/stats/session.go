package stats

import "time"

const (
	SessionAsia       = "Asia"
	SessionLondon     = "London"
	SessionNY         = "NY"
	SessionAsiaLondon = "Asia-London overlap"
	SessionLondonNY   = "London-NY overlap"
	SessionOther      = "Other"
)

// SessionLabel maps a UTC timestamp to its trading session. Sessions are
// Asia [0,8), London [7,16) and NY [12,21) hours UTC; overlaps get their own
// label and everything else is Other.
func SessionLabel(t time.Time) string {
	t = t.UTC()
	h := float64(t.Hour()) + float64(t.Minute())/60.0

	asia := h >= 0 && h < 8
	london := h >= 7 && h < 16
	ny := h >= 12 && h < 21

	switch {
	case asia && london:
		return SessionAsiaLondon
	case london && ny:
		return SessionLondonNY
	case ny:
		return SessionNY
	case london:
		return SessionLondon
	case asia:
		return SessionAsia
	default:
		return SessionOther
	}
}
