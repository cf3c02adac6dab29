package types

import "time"

// HighImpactEvent is an economic calendar entry already filtered to high importance.
type HighImpactEvent struct {
	Time   time.Time `yaml:"time" json:"time"`
	Impact string    `yaml:"impact,omitempty" json:"impact,omitempty"`
	Title  string    `yaml:"title,omitempty" json:"title,omitempty"`
}
