package datasource

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quality/internal/logger"
	"github.com/rxtech-lab/argo-quality/internal/types"
	"github.com/rxtech-lab/argo-quality/pkg/errors"
	"go.uber.org/zap"
)

var timeColumns = []string{"time", "datetime_utc", "datetime", "timestamp"}

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	// offset is the fixed UTC offset of naive source timestamps.
	offset time.Duration
	// forceShift applies offset to timezone-aware timestamps too.
	forceShift bool
}

type Option func(*DuckDBDataSource)

// WithSourceOffset shifts source timestamps by -offset to obtain UTC.
// Naive timestamps are always shifted, timezone-aware ones only when force is set.
func WithSourceOffset(offset time.Duration, force bool) Option {
	return func(d *DuckDBDataSource) {
		d.offset = offset
		d.forceShift = force
	}
}

// NewDataSource opens a DuckDB database at dbPath ("" for in-memory).
// Initialize is what attaches a bar file to it.
func NewDataSource(dbPath string, log *logger.Logger, opts ...Option) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	d := &DuckDBDataSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "bar file %s not found", path)
	}

	reader, err := readerFor(path)
	if err != nil {
		return err
	}

	for _, stmt := range []string{`DROP VIEW IF EXISTS market_data;`, `DROP VIEW IF EXISTS market_source;`} {
		if _, err := d.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
		}
	}

	// Squirrel does not support CREATE VIEW.
	if _, err := d.db.Exec(fmt.Sprintf(`CREATE VIEW market_source AS SELECT * FROM %s;`, reader)); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read %s", path)
	}

	columns, err := d.columns()
	if err != nil {
		return err
	}

	timeCol, timeType, ok := pickColumn(columns, timeColumns...)
	if !ok {
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s has no time column (tried %s)", path, strings.Join(timeColumns, ", "))
	}

	selects := []string{d.timeExpression(timeCol, timeType) + " AS time"}

	for _, name := range []string{"open", "high", "low", "close"} {
		col, _, found := pickColumn(columns, name)
		if !found {
			return errors.Newf(errors.ErrCodeInvalidParameter, "%s has no %s column", path, name)
		}

		selects = append(selects, fmt.Sprintf("CAST(%s AS DOUBLE) AS %s", quoteIdent(col), name))
	}

	if col, _, found := pickColumn(columns, "volume", "tick_volume"); found {
		selects = append(selects, fmt.Sprintf("CAST(%s AS DOUBLE) AS volume", quoteIdent(col)))
	} else {
		selects = append(selects, "CAST(0 AS DOUBLE) AS volume")
	}

	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT %s FROM market_source WHERE %s IS NOT NULL;`,
		strings.Join(selects, ", "), quoteIdent(timeCol))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create market_data view", err)
	}

	d.logger.Debug("Market data view created",
		zap.String("time_column", timeCol),
		zap.String("time_type", timeType),
		zap.Duration("source_offset", d.offset),
	)

	return nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.filter(d.sq.Select("COUNT(*)").From("market_data"), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// TimeRange implements DataSource.
func (d *DuckDBDataSource) TimeRange() (time.Time, time.Time, error) {
	query, args, err := d.sq.Select("MIN(time)", "MAX(time)").From("market_data").ToSql()
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build range query", err)
	}

	var first, last sql.NullTime
	if err := d.db.QueryRow(query, args...).Scan(&first, &last); err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query time range", err)
	}

	if !first.Valid || !last.Valid {
		return time.Time{}, time.Time{}, errors.New(errors.ErrCodeDataNotFound, "data source is empty")
	}

	return first.Time.UTC(), last.Time.UTC(), nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		d.logger.Debug("Reading bars from DuckDB")

		builder := d.sq.Select("time", "open", "high", "low", "close", "volume").From("market_data")

		query, args, err := d.filter(builder, start, end).OrderBy("time ASC").ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build read query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var bar types.Bar

			if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
				yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err))

				return
			}

			bar.Time = bar.Time.UTC()

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err))
		}
	}
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

func (d *DuckDBDataSource) filter(builder squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap().UTC()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.Lt{"time": end.Unwrap().UTC()})
	}

	return builder
}

type column struct {
	name     string
	dataType string
}

func (d *DuckDBDataSource) columns() ([]column, error) {
	query, args, err := d.sq.Select("column_name", "data_type").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": "market_source"}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build schema query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe bar file", err)
	}
	defer rows.Close()

	var columns []column

	for rows.Next() {
		var c column
		if err := rows.Scan(&c.name, &c.dataType); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column", err)
		}

		columns = append(columns, c)
	}

	return columns, rows.Err()
}

// timeExpression converts the source time column to a naive UTC timestamp.
func (d *DuckDBDataSource) timeExpression(col, dataType string) string {
	ident := quoteIdent(col)
	aware := strings.Contains(strings.ToUpper(dataType), "WITH TIME ZONE")

	expr := fmt.Sprintf("CAST(%s AS TIMESTAMP)", ident)
	if aware {
		expr = fmt.Sprintf("timezone('UTC', %s)", ident)
	}

	if d.offset != 0 && (!aware || d.forceShift) {
		expr = fmt.Sprintf("(%s + to_minutes(CAST(%d AS BIGINT)))", expr, -int64(d.offset/time.Minute))
	}

	return expr
}

func readerFor(path string) (string, error) {
	lower := strings.ToLower(path)
	escaped := strings.ReplaceAll(path, "'", "''")

	switch {
	case strings.HasSuffix(lower, ".parquet"):
		return fmt.Sprintf("read_parquet('%s')", escaped), nil
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".csv.gz"):
		return fmt.Sprintf("read_csv_auto('%s', header=true)", escaped), nil
	}

	return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported bar file format %q", filepath.Ext(path))
}

func pickColumn(columns []column, names ...string) (string, string, bool) {
	for _, name := range names {
		for _, c := range columns {
			if strings.EqualFold(c.name, name) {
				return c.name, c.dataType, true
			}
		}
	}

	return "", "", false
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
