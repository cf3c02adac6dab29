package types

import "time"

// Bar is an aggregated OHLCV record for one period.
type Bar struct {
	// Time is the UTC timestamp of the bar. After resampling it is the period close.
	Time   time.Time `yaml:"time" json:"time"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
}

// Range returns the absolute high-low distance of the bar.
func (b Bar) Range() float64 {
	r := b.High - b.Low
	if r < 0 {
		return -r
	}

	return r
}
