package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/argo-quality/internal/config"
	"github.com/rxtech-lab/argo-quality/internal/holiday"
	"github.com/rxtech-lab/argo-quality/internal/logger"
	"github.com/rxtech-lab/argo-quality/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"
)

// scoreAction loads the bars, scores every requested timeframe and prints a summary.
func scoreAction(ctx context.Context, cmd *cli.Command) error {
	level := zapcore.InfoLevel
	if cmd.Bool("verbose") {
		level = zapcore.DebugLevel
	}

	l, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck

	opts := scoreOptions{
		DataPath:     cmd.String("data"),
		ConfigPath:   cmd.String("config"),
		CalendarPath: cmd.String("calendar"),
		Timeframes:   cmd.String("timeframe"),
		OutputPath:   cmd.String("output"),
		GapsPath:     cmd.String("gaps"),
		MetricsPath:  cmd.String("metrics"),
		Quarter:      int(cmd.Int("quarter")),
		Year:         int(cmd.Int("year")),
		Month:        cmd.String("month"),
		Progress:     os.Stderr,
	}

	report, _, err := runScore(ctx, opts, l)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Scoring failed: "+err.Error()))

		return err
	}

	fmt.Println(RenderSummary(report))

	return nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	cfg := config.Default()

	schema, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

func initAction(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("output")

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.Default().Write(path); err != nil {
		return err
	}

	fmt.Println(HelpStyle.Render("Wrote default config to " + path))

	return nil
}

func easterAction(_ context.Context, cmd *cli.Command) error {
	year := int(cmd.Int("year"))
	easter := holiday.EasterSunday(year)

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Holidays %d", year)))
	fmt.Printf("Good Friday   %s\n", easter.AddDate(0, 0, -2).Format("2006-01-02"))
	fmt.Printf("Easter Sunday %s\n", easter.Format("2006-01-02"))
	fmt.Printf("Easter Monday %s\n", easter.AddDate(0, 0, 1).Format("2006-01-02"))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "quality",
		Usage:   "Score the data quality of minute bar files",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "score",
				Usage: "Analyse gaps and compute the quality scorecard",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the bar file (Parquet or CSV)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the YAML config. Defaults are used when omitted",
					},
					&cli.StringFlag{
						Name:  "calendar",
						Usage: "Economic calendar CSV. Defaults to calendar_<year>.csv next to the data file",
					},
					&cli.StringFlag{
						Name:    "timeframe",
						Aliases: []string{"t"},
						Usage:   "Comma separated timeframes (M1, M5, H1). Defaults to the configured timeframe",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Report path. A .json extension writes JSON, anything else YAML",
					},
					&cli.StringFlag{
						Name:  "gaps",
						Usage: "Parquet file receiving every gap of the run",
					},
					&cli.StringFlag{
						Name:  "metrics",
						Usage: "Prometheus textfile receiving the scorecard gauges",
					},
					&cli.IntFlag{
						Name:  "quarter",
						Usage: "Restrict the analysis to a quarter (1 to 4), requires --year",
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Year of --quarter",
					},
					&cli.StringFlag{
						Name:  "month",
						Usage: "Restrict the analysis to a month in `YYYY-MM` format",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable debug logging",
					},
				},
				Action: scoreAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the config file",
				Action: schemaAction,
			},
			{
				Name:  "init",
				Usage: "Write the default config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Destination of the config file",
						Value:   "quality.yaml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: initAction,
			},
			{
				Name:  "easter",
				Usage: "Print the Easter holidays of a year",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "year",
						Aliases:  []string{"y"},
						Usage:    "Year to compute",
						Required: true,
					},
				},
				Action: easterAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
