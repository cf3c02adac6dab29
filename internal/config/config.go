// Package config loads the YAML configuration of a quality run and adapts it
// into the typed inputs of the analysis pipeline. Malformed values never fail
// a run: adapters fall back to defaults and Warnings reports what was ignored.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quality/internal/version"
	"github.com/rxtech-lab/argo-quality/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Version  string         `yaml:"version" json:"version" validate:"required" jsonschema:"title=Version,description=Configuration format version,default=1.1.0"`
	Runtime  RuntimeConfig  `yaml:"runtime" json:"runtime" jsonschema:"title=Runtime,description=Timeframe and input timestamp handling"`
	Scoring  ScoringConfig  `yaml:"scoring" json:"scoring" jsonschema:"title=Scoring,description=Explainable windows excluded from scoring"`
	Calendar CalendarConfig `yaml:"calendar" json:"calendar" jsonschema:"title=Calendar,description=Economic calendar matching"`
}

type RuntimeConfig struct {
	Timeframe           string                     `yaml:"timeframe" json:"timeframe" jsonschema:"title=Timeframe,enum=M1,enum=M5,enum=H1,default=M5"`
	SourceTZ            string                     `yaml:"source_tz" json:"source_tz" jsonschema:"title=Source Timezone,description=UTC or EST_FIXED or a fixed offset such as -05:00 or minutes,default=UTC"`
	ForceShiftEvenIfUTC bool                       `yaml:"force_shift_even_if_utc" json:"force_shift_even_if_utc" jsonschema:"title=Force Shift,description=Apply the source offset even to timezone-aware timestamps"`
	StartTime           optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional inclusive start of the analysed range"`
	EndTime             optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional exclusive end of the analysed range"`
}

// UnmarshalYAML maps the optional time range onto go-optional values.
func (r *RuntimeConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type runtime struct {
		Timeframe           string     `yaml:"timeframe"`
		SourceTZ            string     `yaml:"source_tz"`
		ForceShiftEvenIfUTC bool       `yaml:"force_shift_even_if_utc"`
		StartTime           *time.Time `yaml:"start_time"`
		EndTime             *time.Time `yaml:"end_time"`
	}

	raw := runtime{
		Timeframe:           r.Timeframe,
		SourceTZ:            r.SourceTZ,
		ForceShiftEvenIfUTC: r.ForceShiftEvenIfUTC,
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	r.Timeframe = raw.Timeframe
	r.SourceTZ = raw.SourceTZ
	r.ForceShiftEvenIfUTC = raw.ForceShiftEvenIfUTC
	r.StartTime = optional.None[time.Time]()
	r.EndTime = optional.None[time.Time]()

	if raw.StartTime != nil {
		r.StartTime = optional.Some(raw.StartTime.UTC())
	}

	if raw.EndTime != nil {
		r.EndTime = optional.Some(raw.EndTime.UTC())
	}

	return nil
}

// MarshalYAML writes unset time bounds as absent keys.
func (r RuntimeConfig) MarshalYAML() (interface{}, error) {
	type runtime struct {
		Timeframe           string     `yaml:"timeframe"`
		SourceTZ            string     `yaml:"source_tz"`
		ForceShiftEvenIfUTC bool       `yaml:"force_shift_even_if_utc"`
		StartTime           *time.Time `yaml:"start_time,omitempty"`
		EndTime             *time.Time `yaml:"end_time,omitempty"`
	}

	raw := runtime{
		Timeframe:           r.Timeframe,
		SourceTZ:            r.SourceTZ,
		ForceShiftEvenIfUTC: r.ForceShiftEvenIfUTC,
	}

	if start, err := r.StartTime.Take(); err == nil {
		raw.StartTime = &start
	}

	if end, err := r.EndTime.Take(); err == nil {
		raw.EndTime = &end
	}

	return raw, nil
}

type ScoringConfig struct {
	Ignore IgnoreConfig `yaml:"ignore" json:"ignore" jsonschema:"title=Ignore,description=Windows whose gaps are expected"`
}

type IgnoreConfig struct {
	WeeklyWindowUTC string        `yaml:"weekly_window_utc" json:"weekly_window_utc" jsonschema:"title=Weekly Window,description=Recurring closure such as Fri 22:00 -> Sun 22:00,default=Fri 22:00 -> Sun 22:00"`
	DatesUTC        [][]string    `yaml:"dates_utc" json:"dates_utc" jsonschema:"title=Custom Ranges,description=Explicit [start end] pairs in YYYY-MM-DDTHH:MM:SSZ form"`
	HolidayPolicy   HolidayPolicy `yaml:"fx_holiday_policy" json:"fx_holiday_policy" jsonschema:"title=FX Holiday Policy"`
}

type HolidayPolicy struct {
	Mode             string   `yaml:"mode" json:"mode" jsonschema:"title=Mode,enum=minimal,enum=extended,default=minimal"`
	Include          []string `yaml:"include" json:"include" jsonschema:"title=Include,description=Explicit holiday names replacing the mode set"`
	Extended         bool     `yaml:"extended" json:"extended" jsonschema:"title=Extended,description=Add Boxing Day and Easter Monday"`
	ExtraClosuresUTC []string `yaml:"extra_closures_utc" json:"extra_closures_utc" jsonschema:"title=Extra Closures,description=Ranges in start -> end form"`
}

type CalendarConfig struct {
	ToleranceSeconds int `yaml:"tolerance_seconds" json:"tolerance_seconds" validate:"gte=0,lte=86400" jsonschema:"title=Tolerance,description=Seconds around a gap in which an event still matches,minimum=0,maximum=86400,default=60"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Version: version.ConfigVersion,
		Runtime: RuntimeConfig{
			Timeframe: "M5",
			SourceTZ:  "UTC",
			StartTime: optional.None[time.Time](),
			EndTime:   optional.None[time.Time](),
		},
		Scoring: ScoringConfig{
			Ignore: IgnoreConfig{
				WeeklyWindowUTC: "Fri 22:00 -> Sun 22:00",
				HolidayPolicy:   HolidayPolicy{Mode: "minimal"},
			},
		},
		Calendar: CalendarConfig{ToleranceSeconds: 60},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the structural constraints and the declared version.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := version.CheckConfigCompatibility(version.ConfigVersion, c.Version); err != nil {
		return err
	}

	if c.Runtime.StartTime.IsSome() && c.Runtime.EndTime.IsSome() {
		start := c.Runtime.StartTime.Unwrap()
		end := c.Runtime.EndTime.Unwrap()

		if !end.After(start) {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "end_time %s must be after start_time %s",
				end.Format(time.RFC3339), start.Format(time.RFC3339))
		}
	}

	return nil
}

// Write stores the configuration as YAML.
func (c Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to encode config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, fmt.Sprintf("failed to write config %s", path), err)
	}

	return nil
}
