package writer

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-quality/internal/analyzer"
	"github.com/rxtech-lab/argo-quality/internal/logger"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/rxtech-lab/argo-quality/pkg/errors"
	"go.uber.org/zap"
)

// GapExporter collects tagged gaps in an in-memory DuckDB table and exports
// them to a Parquet file.
type GapExporter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	logger     *logger.Logger
}

// NewGapExporter creates an exporter writing to outputPath on Finalize.
func NewGapExporter(outputPath string, log *logger.Logger) *GapExporter {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &GapExporter{
		outputPath: outputPath,
		logger:     log,
	}
}

// Initialize opens the database, creates the gaps table, begins a
// transaction and prepares the insert statement.
func (w *GapExporter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS gaps (
			run_id TEXT,
			timeframe TEXT,
			gap_start TIMESTAMP,
			gap_end TIMESTAMP,
			delta_seconds BIGINT,
			reason TEXT,
			anomalous BOOLEAN,
			calendar_high BOOLEAN
		)
	`)
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeExportFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO gaps (run_id, timeframe, gap_start, gap_end, delta_seconds, reason, anomalous, calendar_high)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeExportFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write inserts one gap.
func (w *GapExporter) Write(runID string, tf types.Timeframe, gap types.TaggedGap) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeExportFailed, "exporter not initialized")
	}

	reason := string(gap.Reason)
	if gap.Anomalous() {
		reason = "anomalous"
	}

	_, err := w.stmt.Exec(
		runID,
		string(tf),
		gap.Start.UTC(),
		gap.End.UTC(),
		gap.DeltaSeconds,
		reason,
		gap.Anomalous(),
		gap.CalendarHigh,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to insert gap", err)
	}

	return nil
}

// Finalize commits the transaction and exports the table to Parquet.
func (w *GapExporter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeExportFailed, "exporter not initialized")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeExportFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	path := strings.ReplaceAll(w.outputPath, "'", "''")

	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM gaps ORDER BY timeframe, gap_start) TO '%s' (FORMAT PARQUET)`, path))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeExportFailed, "failed to export to Parquet", err)
	}

	w.logger.Info("Exported gaps", zap.String("path", w.outputPath))

	return w.outputPath, nil
}

// Close releases the statement, any open transaction and the database.
func (w *GapExporter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("close statement: %v", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.logger.Warn("Failed to rollback transaction during close", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return errors.New(errors.ErrCodeExportFailed, "errors occurred during close: "+strings.Join(closeErrors, "; "))
	}

	return nil
}

// ExportGaps writes every gap of the results to a Parquet file at path.
func ExportGaps(path, runID string, results []*analyzer.Result, log *logger.Logger) (err error) {
	exporter := NewGapExporter(path, log)
	if err := exporter.Initialize(); err != nil {
		return err
	}

	defer func() {
		if closeErr := exporter.Close(); err == nil {
			err = closeErr
		}
	}()

	for _, result := range results {
		if result == nil {
			continue
		}

		for _, gap := range result.Gaps {
			if err := exporter.Write(runID, result.Timeframe, gap); err != nil {
				return err
			}
		}
	}

	_, err = exporter.Finalize()

	return err
}
