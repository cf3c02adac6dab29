package writer

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-quality/internal/analyzer"
	"github.com/rxtech-lab/argo-quality/internal/calendar"
	"github.com/rxtech-lab/argo-quality/internal/stats"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/rxtech-lab/argo-quality/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type WriterTestSuite struct {
	suite.Suite
	result *analyzer.Result
	dir    string
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func (suite *WriterTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()

	start := time.Date(2025, 1, 7, 14, 0, 0, 0, time.UTC)
	anomaly := types.TaggedGap{
		Gap:          types.Gap{Start: start, End: start.Add(30 * time.Minute), DeltaSeconds: 1800},
		CalendarHigh: true,
	}
	weekend := types.TaggedGap{
		Gap:    types.Gap{Start: start.Add(96 * time.Hour), End: start.Add(144 * time.Hour), DeltaSeconds: 48 * 3600},
		Reason: types.ReasonWeekendClosed,
	}

	suite.result = &analyzer.Result{
		Timeframe:         types.TimeframeM5,
		Bars:              1000,
		Gaps:              []types.TaggedGap{anomaly, weekend},
		Anomalies:         []types.TaggedGap{anomaly},
		CalendarAvailable: true,
		Calendar:          calendar.Metrics{TotalHighEvents: 3, MatchedHighEvents: 1, Coverage: 1.0 / 3.0},
		Sessions:          []stats.SessionShare{{Session: "London-NY overlap", Count: 1, Percent: 100.0 / 3.0}},
		Monthly:           []stats.MonthRow{{Month: "2025-01", Rows: 1000, Gaps: 1}},
		Scorecard: types.Scorecard{
			Timeframe: types.TimeframeM5,
			Total:     87.123456,
			Components: []types.ScoreComponent{
				{Name: types.ComponentGapMix, Weight: 0.25, Value: 66.666666},
			},
		},
	}
}

func (suite *WriterTestSuite) TestRound() {
	suite.Equal(1.01, Round(1.005, 2))
	suite.Equal(87.12, Round(87.123456, 2))
	suite.Equal(-2.5, Round(-2.45, 1))
	suite.Equal(100.0, Round(99.999, 2))
}

func (suite *WriterTestSuite) TestNewReport() {
	report := NewReport("run-1", "bars.parquet", []*analyzer.Result{suite.result, nil})

	suite.Equal("run-1", report.RunID)
	suite.Require().Len(report.Timeframes, 1)

	tf := report.Timeframes[0]
	suite.Equal(87.12, tf.Scorecard.Total)
	suite.Equal(66.67, tf.Scorecard.Components[0].Value)
	suite.Equal(33.33, tf.Sessions[0].Percent)
	suite.Require().NotNil(tf.Calendar)
	suite.Equal(0.3333, tf.Calendar.Coverage)
	suite.Equal(map[string]int{"anomalous": 1, string(types.ReasonWeekendClosed): 1}, tf.Gaps)

	// Source result is untouched.
	suite.Equal(87.123456, suite.result.Scorecard.Total)
	suite.Equal(100.0/3.0, suite.result.Sessions[0].Percent)
}

func (suite *WriterTestSuite) TestNewReportWithoutCalendar() {
	suite.result.CalendarAvailable = false

	report := NewReport(NewRunID(), "bars.parquet", []*analyzer.Result{suite.result})
	suite.Nil(report.Timeframes[0].Calendar)
	suite.Len(report.RunID, 36)
}

func (suite *WriterTestSuite) TestWriteReportYAML() {
	path := filepath.Join(suite.dir, "result.yaml")
	report := NewReport("run-1", "bars.parquet", []*analyzer.Result{suite.result})

	suite.Require().NoError(WriteReport(path, report))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var decoded Report
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.Equal("run-1", decoded.RunID)
	suite.Equal(87.12, decoded.Timeframes[0].Scorecard.Total)
	suite.Contains(string(data), "total: 87.12")

	again := filepath.Join(suite.dir, "again.yaml")
	suite.Require().NoError(WriteReport(again, report))
	second, err := os.ReadFile(again)
	suite.Require().NoError(err)
	suite.Equal(data, second)
}

func (suite *WriterTestSuite) TestWriteReportJSON() {
	path := filepath.Join(suite.dir, "result.json")
	suite.Require().NoError(WriteReport(path, NewReport("run-2", "bars.csv", []*analyzer.Result{suite.result})))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal("run-2", decoded["run_id"])
}

func (suite *WriterTestSuite) TestWriteReportFailure() {
	err := WriteReport(filepath.Join(suite.dir, "missing", "result.yaml"), Report{})
	suite.True(errors.HasCode(err, errors.ErrCodeWriteFailed))
}

func (suite *WriterTestSuite) TestExportGaps() {
	path := filepath.Join(suite.dir, "gaps.parquet")
	suite.Require().NoError(ExportGaps(path, "run-1", []*analyzer.Result{suite.result, nil}, nil))

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`SELECT run_id, timeframe, delta_seconds, reason, anomalous, calendar_high FROM read_parquet('%s') ORDER BY gap_start`, path))
	suite.Require().NoError(err)
	defer rows.Close()

	type row struct {
		runID, timeframe, reason string
		delta                    int64
		anomalous, calendarHigh  bool
	}

	var got []row

	for rows.Next() {
		var r row
		suite.Require().NoError(rows.Scan(&r.runID, &r.timeframe, &r.delta, &r.reason, &r.anomalous, &r.calendarHigh))
		got = append(got, r)
	}

	suite.Require().NoError(rows.Err())
	suite.Equal([]row{
		{runID: "run-1", timeframe: "M5", reason: "anomalous", delta: 1800, anomalous: true, calendarHigh: true},
		{runID: "run-1", timeframe: "M5", reason: string(types.ReasonWeekendClosed), delta: 48 * 3600},
	}, got)
}

func (suite *WriterTestSuite) TestExporterRequiresInitialize() {
	exporter := NewGapExporter(filepath.Join(suite.dir, "gaps.parquet"), nil)

	suite.Error(exporter.Write("run", types.TimeframeM1, types.TaggedGap{}))

	_, err := exporter.Finalize()
	suite.True(errors.HasCode(err, errors.ErrCodeExportFailed))
	suite.NoError(exporter.Close())
}
