package main

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quality/internal/analyzer"
	"github.com/rxtech-lab/argo-quality/internal/calendar"
	"github.com/rxtech-lab/argo-quality/internal/config"
	"github.com/rxtech-lab/argo-quality/internal/datasource"
	"github.com/rxtech-lab/argo-quality/internal/logger"
	"github.com/rxtech-lab/argo-quality/internal/metrics"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/rxtech-lab/argo-quality/internal/writer"
	"github.com/rxtech-lab/argo-quality/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// scoreOptions carries the flags of the score command.
type scoreOptions struct {
	DataPath     string
	ConfigPath   string
	CalendarPath string
	Timeframes   string
	OutputPath   string
	GapsPath     string
	MetricsPath  string
	Quarter      int
	Year         int
	Month        string
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
}

// parseTimeframes parses a comma separated timeframe list. An empty value
// yields the configured timeframe. Duplicates are dropped.
func parseTimeframes(value string, fallback types.Timeframe) ([]types.Timeframe, error) {
	if strings.TrimSpace(value) == "" {
		return []types.Timeframe{fallback}, nil
	}

	seen := make(map[types.Timeframe]bool)

	var result []types.Timeframe

	for _, token := range strings.Split(value, ",") {
		if strings.TrimSpace(token) == "" {
			continue
		}

		tf, ok := types.ParseTimeframe(token)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe %q", strings.TrimSpace(token))
		}

		if seen[tf] {
			continue
		}

		seen[tf] = true
		result = append(result, tf)
	}

	if len(result) == 0 {
		return []types.Timeframe{fallback}, nil
	}

	return result, nil
}

// resolvePeriod turns the period flags into an analysis period.
func resolvePeriod(quarter, year int, month string) (optional.Option[analyzer.Period], error) {
	switch {
	case month != "" && quarter != 0:
		return optional.None[analyzer.Period](), errors.New(errors.ErrCodeInvalidPeriod, "--month and --quarter are mutually exclusive")
	case month != "":
		period, err := analyzer.ParseMonth(month)
		if err != nil {
			return optional.None[analyzer.Period](), err
		}

		return optional.Some(period), nil
	case quarter != 0:
		if year == 0 {
			return optional.None[analyzer.Period](), errors.New(errors.ErrCodeInvalidPeriod, "--quarter requires --year")
		}

		period, err := analyzer.QuarterBounds(year, quarter)
		if err != nil {
			return optional.None[analyzer.Period](), err
		}

		return optional.Some(period), nil
	default:
		return optional.None[analyzer.Period](), nil
	}
}

// loadConfig returns the configuration at path, or the defaults when path is empty.
func loadConfig(path string, log *logger.Logger) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	for _, warning := range cfg.Warnings() {
		log.Warn("Config value ignored", zap.String("path", path), zap.String("warning", warning))
	}

	return cfg, nil
}

// loadEvents reads the economic calendar. An explicit path wins. Otherwise
// calendar_<year>.csv files are looked up next to the data file and in the
// working directory for every year the bars span. A calendar that cannot be
// loaded is treated as unavailable.
func loadEvents(calendarPath, dataPath string, bars []types.Bar, log *logger.Logger) optional.Option[[]types.HighImpactEvent] {
	var paths []string

	if calendarPath != "" {
		paths = append(paths, calendarPath)
	} else if len(bars) > 0 {
		dirs := []string{filepath.Dir(dataPath), "."}

		first, last := bars[0].Time, bars[0].Time
		for _, b := range bars {
			if b.Time.Before(first) {
				first = b.Time
			}

			if b.Time.After(last) {
				last = b.Time
			}
		}

		for year := first.UTC().Year(); year <= last.UTC().Year(); year++ {
			if path, ok := calendar.FindForYear(dirs, year); ok {
				paths = append(paths, path)
			}
		}
	}

	if len(paths) == 0 {
		log.Info("No economic calendar found, calendar component is not applicable")

		return optional.None[[]types.HighImpactEvent]()
	}

	loader, err := calendar.NewLoader(log.Named("calendar"))
	if err != nil {
		log.Warn("Failed to open calendar loader", zap.Error(err))

		return optional.None[[]types.HighImpactEvent]()
	}
	defer loader.Close()

	var events []types.HighImpactEvent

	for _, path := range paths {
		loaded, err := loader.LoadHighImpact(path)
		if err != nil {
			log.Warn("Failed to load economic calendar", zap.String("path", path), zap.Error(err))

			return optional.None[[]types.HighImpactEvent]()
		}

		events = append(events, loaded...)
	}

	if len(events) == 0 {
		log.Info("Economic calendar holds no high-impact events", zap.Strings("paths", paths))

		return optional.None[[]types.HighImpactEvent]()
	}

	return optional.Some(calendar.Normalize(events))
}

// runScore reads the bars once and analyses every requested timeframe
// concurrently. Results keep the order of the timeframe list.
func runScore(ctx context.Context, opts scoreOptions, log *logger.Logger) (writer.Report, []*analyzer.Result, error) {
	cfg, err := loadConfig(opts.ConfigPath, log)
	if err != nil {
		return writer.Report{}, nil, err
	}

	timeframes, err := parseTimeframes(opts.Timeframes, cfg.Timeframe())
	if err != nil {
		return writer.Report{}, nil, err
	}

	period, err := resolvePeriod(opts.Quarter, opts.Year, opts.Month)
	if err != nil {
		return writer.Report{}, nil, err
	}

	ds, err := datasource.NewDataSource("", log.Named("datasource"),
		datasource.WithSourceOffset(cfg.SourceOffset(), cfg.Runtime.ForceShiftEvenIfUTC))
	if err != nil {
		return writer.Report{}, nil, err
	}
	defer ds.Close()

	if err := ds.Initialize(opts.DataPath); err != nil {
		return writer.Report{}, nil, err
	}

	bars, err := datasource.ReadBars(ds, cfg.Runtime.StartTime, cfg.Runtime.EndTime)
	if err != nil {
		return writer.Report{}, nil, err
	}

	log.Info("Loaded bars",
		zap.String("path", opts.DataPath),
		zap.Int("bars", len(bars)),
		zap.Int("timeframes", len(timeframes)),
	)

	events := loadEvents(opts.CalendarPath, opts.DataPath, bars, log)

	registry := metrics.NewRegistry()
	base := analyzer.NewAnalyzer(cfg, log)
	results := make([]*analyzer.Result, len(timeframes))

	progress := io.Discard
	if opts.Progress != nil {
		progress = opts.Progress
	}

	bar := progressbar.NewOptions(len(timeframes),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Scoring timeframes"),
		progressbar.OptionShowCount(),
	)

	g, gctx := errgroup.WithContext(ctx)

	for i, tf := range timeframes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			started := time.Now()
			a := base.WithTimeframe(tf)

			if p, err := period.Take(); err == nil {
				results[i] = a.RunPeriod(bars, events, p)
			} else {
				results[i] = a.Run(bars, events)
			}

			registry.ObserveDuration(tf.String(), time.Since(started))
			registry.Record(results[i])

			return bar.Add(1)
		})
	}

	if err := g.Wait(); err != nil {
		return writer.Report{}, nil, err
	}

	_ = bar.Finish()

	runID := writer.NewRunID()
	report := writer.NewReport(runID, opts.DataPath, results)

	if opts.OutputPath != "" {
		if err := writer.WriteReport(opts.OutputPath, report); err != nil {
			return writer.Report{}, nil, err
		}

		log.Info("Wrote report", zap.String("path", opts.OutputPath), zap.String("run_id", runID))
	}

	if opts.GapsPath != "" {
		if err := writer.ExportGaps(opts.GapsPath, runID, results, log.Named("exporter")); err != nil {
			return writer.Report{}, nil, err
		}

		log.Info("Exported gaps", zap.String("path", opts.GapsPath))
	}

	if opts.MetricsPath != "" {
		if err := registry.WriteTextfile(opts.MetricsPath); err != nil {
			return writer.Report{}, nil, err
		}

		log.Info("Wrote metrics", zap.String("path", opts.MetricsPath))
	}

	return report, results, nil
}
