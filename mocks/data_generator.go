package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-quality/internal/types"
)

// DataGenerator generates realistic minute bars with configurable outages.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Outage drops every bar with Start <= time < End.
type Outage struct {
	Start time.Time
	End   time.Time
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// StartTime is the first bar slot (inclusive).
	StartTime time.Time
	// EndTime is the last bar slot (exclusive).
	EndTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement per bar
	Volatility float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// WeeklyClosure drops bars from Friday 22:00 to Sunday 22:00 UTC.
	WeeklyClosure bool
	Outages       []Outage
}

// DefaultConfig returns one Monday of FX-like minute bars.
func DefaultConfig() GeneratorConfig {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	return GeneratorConfig{
		StartTime:      start,
		EndTime:        start.Add(24 * time.Hour),
		Interval:       time.Minute,
		InitialPrice:   1.0850,
		Volatility:     0.0002,
		VolumeBase:     100,
		VolumeVariance: 0.3,
	}
}

// Generate creates bars following a geometric Brownian motion model.
// Slots falling into the weekly closure or an outage are skipped.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	var data []types.Bar

	currentPrice := config.InitialPrice

	for t := config.StartTime.UTC(); t.Before(config.EndTime); t = t.Add(config.Interval) {
		if config.WeeklyClosure && inWeeklyClosure(t) {
			continue
		}

		if inOutage(t, config.Outages) {
			continue
		}

		open := currentPrice

		// Box-Muller transform for a normal draw.
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		close := open * (1 + config.Volatility*z)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension

		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation

		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		data = append(data, types.Bar{
			Time:   t,
			Open:   roundToDecimals(open, 5),
			High:   roundToDecimals(high, 5),
			Low:    roundToDecimals(low, 5),
			Close:  roundToDecimals(close, 5),
			Volume: roundToDecimals(volume, 2),
		})

		currentPrice = close
	}

	return data
}

// GenerateRange is a convenience wrapper producing minute bars between start
// and end with the weekly closure and the given outages, using a fixed seed.
func GenerateRange(start, end time.Time, outages ...Outage) []types.Bar {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.StartTime = start
	config.EndTime = end
	config.WeeklyClosure = true
	config.Outages = outages

	return gen.Generate(config)
}

func inWeeklyClosure(t time.Time) bool {
	switch t.Weekday() {
	case time.Friday:
		return t.Hour() >= 22
	case time.Saturday:
		return true
	case time.Sunday:
		return t.Hour() < 22
	}

	return false
}

func inOutage(t time.Time, outages []Outage) bool {
	for _, o := range outages {
		if !t.Before(o.Start) && t.Before(o.End) {
			return true
		}
	}

	return false
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
